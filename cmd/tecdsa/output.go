package main

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/canopy-network/canopy/lib/tecdsa"
)

func printSection(title string) {
	pterm.DefaultSection.Println(title)
}

func printKeyValues(rows [][]string) {
	_ = pterm.DefaultTable.WithHasHeader(false).WithData(rows).Render()
}

func printShares(shares []*tecdsa.Share) error {
	rows := [][]string{{"Index", "Value", "Encoded"}}
	for _, share := range shares {
		encoded, err := share.MarshalBinary()
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", share.Index),
			share.Value.String(),
			fmt.Sprintf("%x", encoded),
		})
	}
	return pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render()
}

func printPartials(partials []*tecdsa.PartialSignature) {
	rows := [][]string{{"Index", "r", "s"}}
	for _, p := range partials {
		rows = append(rows, []string{fmt.Sprintf("%d", p.Index), p.R.String(), p.S.String()})
	}
	_ = pterm.DefaultTable.WithHasHeader(true).WithData(rows).Render()
}

func printSignature(sig *tecdsa.CombinedSignature) {
	printKeyValues([][]string{
		{"r", sig.RHex()},
		{"s", sig.SHex()},
		{"v", fmt.Sprintf("%d", sig.V)},
	})
}

func printCheck(label string, ok bool) {
	if ok {
		pterm.Success.Println(label)
		return
	}
	pterm.Error.Println(label)
}
