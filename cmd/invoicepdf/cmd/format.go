package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"invoice-backend/currency"
)

var (
	formatCurrency string
	formatSimple   bool
)

var formatCmd = &cobra.Command{
	Use:   "format <amount>",
	Short: "Format an amount in a currency's locale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		code, err := currency.Parse(formatCurrency)
		if err != nil {
			return err
		}
		out := currency.Format(amount, code)
		if formatSimple {
			out = currency.FormatSimple(amount, code)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	formatCmd.Flags().StringVarP(&formatCurrency, "currency", "c", string(currency.Default), "ISO currency code")
	formatCmd.Flags().BoolVar(&formatSimple, "simple", false, "symbol and up to three fraction digits")
}
