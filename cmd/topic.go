package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/ssrwatch/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "shows documentation" }
func (*topicCmd) Usage() string {
	return `ssrwatch topic [<topic>...]

Shows documentation topics. Without argument, lists the topics.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{docs.Index}
	}

	doc, err := docs.Topics(topics...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(stdout, doc)
	return subcommands.ExitSuccess
}
