package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/sweeney/morse-key/internal/config"
	"github.com/sweeney/morse-key/internal/gpio"
	"github.com/sweeney/morse-key/internal/morse"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the code table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTable(cmd.OutOrStdout())
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read the key once and print PRESSED or RELEASED",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Get()
		if err != nil {
			return err
		}
		reader, err := gpio.NewRealReader(s.GPIOChip, s.PinButton)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer reader.Close()
		return printState(cmd.OutOrStdout(), reader)
	},
}

func printTable(w io.Writer) error {
	letter := color.New(color.Bold)
	for _, r := range morse.Letters() {
		p, ok := morse.PatternFor(r)
		if !ok {
			return fmt.Errorf("no pattern for %c", r)
		}
		if _, err := fmt.Fprintf(w, "%s  %-4s  %s\n", letter.Sprint(string(r)), p.String(), p.Digits()); err != nil {
			return err
		}
	}
	return nil
}

func printState(w io.Writer, reader gpio.Reader) error {
	pressed, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	_, err = fmt.Fprintln(w, stateString(pressed))
	return err
}

func stateString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
