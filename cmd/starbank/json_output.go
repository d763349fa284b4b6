package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"starbank/internal/bank"
	"starbank/internal/mapinfo"
)

// mapBanksJSON is the machine-readable shape of `maps banks --json`.
type mapBanksJSON struct {
	Key         string        `json:"key"`
	CachePath   string        `json:"cache_path"`
	IsProtected *bool         `json:"is_protected,omitempty"`
	Banks       []bank.Record `json:"banks"`
}

func newMapBanksJSON(entry mapinfo.MapEntry) mapBanksJSON {
	banks := entry.Banks
	if banks == nil {
		banks = []bank.Record{}
	}
	return mapBanksJSON{
		Key:         entry.Key(),
		CachePath:   entry.CachePath,
		IsProtected: entry.IsProtected,
		Banks:       banks,
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
