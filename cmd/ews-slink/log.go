package main

import (
	"log"
	"os"

	"github.com/GeoNet/kit/weft"
)

var Prefix string

var logger = log.New(os.Stderr, "", log.LstdFlags)

func init() {
	if Prefix != "" {
		log.SetPrefix(Prefix + " ")
		logger.SetPrefix(Prefix + " ")
	}

	weft.SetLogger(logger)
}
