// Package report writes the plain text early-warning summary for a channel.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/GeoNet/ews/internal/damage"
	"github.com/GeoNet/ews/internal/ews"
)

// Write writes the summary r for damage state target to w.
func Write(w io.Writer, target damage.State, r ews.Report) error {
	b := bufio.NewWriter(w)

	fmt.Fprintln(b, "====== EARLY WARNING SYSTEM ======")
	fmt.Fprintf(b, "damage state        : %s\n", target)
	fmt.Fprintf(b, "max pga             : %.6e m/s^2 at %.3f s\n", r.PGAMax, r.PGAMaxTime)

	switch {
	case !r.Triggered:
		fmt.Fprintf(b, "samples             : %d\n", r.Samples)
		fmt.Fprintln(b, ">>> no trigger detected")
	case r.Alarmed:
		fmt.Fprintf(b, "trigger at          : %.3f s\n", r.TriggerTime)
		fmt.Fprintf(b, "alarm at            : %.3f s\n", r.AlarmTime)
		fmt.Fprintf(b, "pgd at alarm        : %.6e m\n", r.PGDAtAlarm)
		fmt.Fprintf(b, "median drift        : %.6e m\n", r.PredictedMedianDrift)
		fmt.Fprintf(b, "drift threshold     : %.6e m\n", r.DriftThreshold)
		fmt.Fprintf(b, "probability         : %.2f %%\n", r.ExceedanceProbability)
		fmt.Fprintf(b, "probability limit   : %.2f %%\n", r.ProbabilityThreshold)
		fmt.Fprintf(b, "max pgd             : %.6e m at %.3f s\n", r.PGDMax, r.PGDMaxTime)
		fmt.Fprintf(b, "lead time           : %.3f s\n", r.LeadTime)
		fmt.Fprintln(b, ">>> ALARM: ACTIVE")
	default:
		fmt.Fprintf(b, "trigger at          : %.3f s\n", r.TriggerTime)
		fmt.Fprintf(b, "max pgd             : %.6e m at %.3f s\n", r.PGDMax, r.PGDMaxTime)
		fmt.Fprintf(b, "drift threshold     : %.6e m\n", r.DriftThreshold)
		fmt.Fprintf(b, "probability         : %.2f %%\n", r.ExceedanceProbability)
		fmt.Fprintf(b, "probability limit   : %.2f %%\n", r.ProbabilityThreshold)
		fmt.Fprintln(b, ">>> ALARM: NOT EXCEEDED")
	}

	fmt.Fprintln(b, "==================================")

	return b.Flush()
}
