package main

import (
	"context"
	"flag"
	"regexp"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/file/s3file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/profile"
	"v.io/x/lib/cmdline"
)

var cpuProfile = flag.String("cpuprofile", "", "If set, write a CPU profile to this directory")

// runner adapts fn to a cmdline.Runner, starting the CPU profiler if
// requested.
func runner(fn func(ctx context.Context, argv []string) error) cmdline.Runner {
	return cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *cpuProfile != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile)).Stop()
		}
		return fn(vcontext.Background(), argv)
	})
}

func main() {
	shutdown := grail.Init()
	defer shutdown()
	file.RegisterImplementation("s3", func() file.Implementation {
		return s3file.NewImplementation(s3file.NewDefaultProvider(session.Options{}), s3file.Options{})
	})
	cmdline.HideGlobalFlagsExcept(regexp.MustCompile(`^cpuprofile$`))
	cmdline.Main(&cmdline.Command{
		Name:     "bio-plasmidqc",
		Short:    "Plasmid read coverage, consensus and fragment tools",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdCoverage(),
			newCmdSplit(),
			newCmdReadQC(),
			newCmdFilter(),
		},
	})
}
