//
// config.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"

	"github.com/markkurossi/tinier/prep"
	"github.com/spf13/viper"
)

// config defines the preprocessing run.
type config struct {
	Verbose   bool
	Players   int
	BatchSize int
	Mode      prep.Mode
	Triples   int
	Bits      int
	Inputs    int
}

func loadConfig(v *viper.Viper) (*config, error) {
	cfg := &config{
		Verbose:   v.GetBool("verbose"),
		Players:   v.GetInt("players"),
		BatchSize: v.GetInt("batch"),
		Triples:   v.GetInt("triples"),
		Bits:      v.GetInt("bits"),
		Inputs:    v.GetInt("inputs"),
	}
	if cfg.Players < 1 {
		return nil, fmt.Errorf("invalid number of players: %v", cfg.Players)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("invalid batch size: %v", cfg.BatchSize)
	}
	switch mode := v.GetString("mode"); mode {
	case "secret":
		cfg.Mode = prep.SecretMode{}

	case "personal":
		owner := v.GetInt("owner")
		if owner < 0 || owner >= cfg.Players {
			return nil, fmt.Errorf("invalid owner %v: expected [0...%v[",
				owner, cfg.Players)
		}
		cfg.Mode = prep.PersonalMode{
			Owner: owner,
		}

	default:
		return nil, fmt.Errorf("invalid mode: %s", mode)
	}
	return cfg, nil
}
