package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/vartrans/pkg/translate"
)

var (
	serverAddr = flag.String("addr", "localhost:50051", "Gateway gRPC address")
	text       = flag.String("text", "", "Text to translate")
	textFile   = flag.String("file", "", "Translate every non-blank line of this file")
	sourceLang = flag.String("source", "", "Source language (en or zh); derived from the text when empty")
	targetLang = flag.String("target", "", "Target language (en or zh); derived from the text when empty")
	timeout    = flag.Duration("timeout", 10*time.Second, "Overall timeout")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	var inputs []string
	switch {
	case *textFile != "":
		data, err := os.ReadFile(*textFile)
		if err != nil {
			logger.WithError(err).Fatalf("Failed to read file: %s", *textFile)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				inputs = append(inputs, line)
			}
		}
	case *text != "":
		inputs = []string{*text}
	default:
		logger.Fatal("Either -file or -text must be provided")
	}

	logger.WithFields(logrus.Fields{
		"server": *serverAddr,
		"inputs": len(inputs),
	}).Info("Connecting to vartrans gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	remote, err := translate.NewRemoteClient(*serverAddr, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create gateway client")
	}
	defer remote.Close()

	if err := remote.CheckHealth(ctx); err != nil {
		logger.WithError(err).Fatal("Gateway is not healthy")
	}
	logger.Info("Gateway health check passed")

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	for _, in := range inputs {
		source, target := *sourceLang, *targetLang
		if target == "" {
			req := translate.NewRequest(in)
			source, target = string(req.Source), string(req.Target)
			in = req.EngineText()
		}

		start := time.Now()
		out, err := remote.Translate(ctx, in, source, target)
		if err != nil {
			logger.WithError(err).WithField("text", in).Error("Translation failed")
			continue
		}
		fmt.Printf("%-24s -> %s  (%s→%s, %s)\n", in, out, source, target, time.Since(start).Round(time.Millisecond))
	}
	fmt.Println(separator)
}
