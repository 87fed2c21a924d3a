package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BTBurke/abtest"
	"github.com/spf13/pflag"
)

func main() {

	opts, err := abtest.ParseCommandLine()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Printf("Could not parse configuration: %s\n\nUse abtest --help for options\n", err)
		os.Exit(1)
	}

	a, errs := abtest.New(opts...)
	if len(errs) > 0 {
		fmt.Println("Error in config:")
		for _, e := range errs {
			fmt.Println(e)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		fmt.Println("Analysis error:", err)
		stop()
		os.Exit(1)
	}

	os.Exit(0)
}
