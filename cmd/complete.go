package cmd

import (
	"github.com/etnz/ssrwatch/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	styles := predict.Set{"attachment", "body"}
	lists := predict.Files("shorthalts*.txt")
	global := map[string]complete.Predictor{
		"config": predict.Files("*.yaml"),
		"v":      predict.Nothing,
	}
	return &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"check": {
				Flags: map[string]complete.Predictor{
					"dry-run":    predict.Nothing,
					"mail-to":    predict.Something,
					"send-style": styles,
					"stocks":     predict.Files("*"),
					"date":       predict.Something,
				},
			},
			"init": {
				Flags: map[string]complete.Predictor{
					"work-dir":   predict.Dirs("*"),
					"mail-to":    predict.Something,
					"send-style": styles,
					"force":      predict.Nothing,
				},
			},
			"validate": {
				Flags: map[string]complete.Predictor{
					"stocks": predict.Files("*"),
				},
			},
			"fetch": {
				Flags: map[string]complete.Predictor{
					"date": predict.Something,
					"o":    predict.Files("*"),
				},
			},
			"match": {
				Flags: map[string]complete.Predictor{
					"stocks": predict.Files("*"),
					"date":   predict.Something,
				},
				Args: lists,
			},
			"topic": {
				Args: topics(),
			},
			"help":  {},
			"flags": {},
		},
	}
}

func topics() complete.Predictor {
	names, _ := docs.List()
	return predict.Set(append(names, docs.Index))
}
