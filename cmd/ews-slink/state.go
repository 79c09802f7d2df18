package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GeoNet/kit/seis/ms"
	"github.com/GeoNet/kit/seis/sl"
)

// stations holds the last sequence number and record time per NET_STA so a reconnect
// resumes where the previous connection stopped.
type stations map[string]sl.Station

// update records the SEEDLink sequence number and start time of a received record.
func (s stations) update(seq string, data []byte) error {
	r, err := ms.NewRecord(data)
	if err != nil {
		return err
	}

	no, err := strconv.ParseInt(strings.TrimSpace(seq), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid sequence %q: %w", seq, err)
	}

	parts := strings.Split(r.SrcName(false), "_")
	if len(parts) < 2 {
		return fmt.Errorf("invalid source %s", r.SrcName(false))
	}

	k := parts[0] + "_" + parts[1]

	if v, ok := s[k]; ok && v.Timestamp.After(r.StartTime()) {
		return nil
	}

	s[k] = sl.Station{
		Network:   parts[0],
		Station:   parts[1],
		Sequence:  int(no),
		Timestamp: r.StartTime(),
	}

	return nil
}

// list is the state sorted by network and station.
func (s stations) list() []sl.Station {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := make([]sl.Station, 0, len(keys))
	for _, k := range keys {
		l = append(l, s[k])
	}

	return l
}
