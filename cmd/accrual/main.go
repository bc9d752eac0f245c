// Command accrual evaluates the leave policy offline.
//
// It reads a JSON array of employees (the POST /api/employees body shape)
// from -in or stdin and prints the enriched records as of -as-of.
//
//	accrual -in employees.json -as-of 2024-06-01
//	cat employees.json | accrual
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

func main() {
	in := flag.String("in", "", "employees JSON file (default stdin)")
	asOfFlag := flag.String("as-of", "", "reference date YYYY-MM-DD (default today, UTC)")
	monthly := flag.String("monthly-accrual", timeoff.DefaultMonthlyAccrual.String(), "days accrued per full month")
	waiting := flag.Int("waiting-months", timeoff.DefaultWaitingMonths, "full months before leave may be used")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*in, *asOfFlag, *monthly, *waiting, os.Stdout); err != nil {
		logger.Fatal("accrual failed", zap.Error(err))
	}
}

func run(in, asOfFlag, monthly string, waiting int, out io.Writer) error {
	asOf := generic.FromTime(time.Now())
	if asOfFlag != "" {
		var err error
		if asOf, err = generic.ParseDate(asOfFlag); err != nil {
			return fmt.Errorf("-as-of: %w", err)
		}
	}

	rate, err := decimal.NewFromString(monthly)
	if err != nil || !rate.IsPositive() {
		return fmt.Errorf("-monthly-accrual must be a positive number, got %q", monthly)
	}
	if waiting <= 0 {
		return fmt.Errorf("-waiting-months must be positive, got %d", waiting)
	}

	src := io.Reader(os.Stdin)
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	employees, err := api.DecodeEmployees(src)
	if err != nil {
		return err
	}

	engine := timeoff.NewEngine(timeoff.NewPolicy(rate, waiting))
	return api.EncodeEmployees(out, engine.Compute(employees, asOf))
}
