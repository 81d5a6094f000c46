package app

import (
	"flag"
	"io"

	"github.com/paperboard/example/internal/config"
)

// CLIOpts are the command line flags of wgld. Flags the user did not set
// leave the config file's values alone.
type CLIOpts struct {
	ConfigPath string
	Demo       string
	List       bool
	Headless   bool
	Frames     int
	Out        string
	Strict     bool
	Refresh    bool
	Shaders    string
	LogLevel   string

	set map[string]bool
}

// ParseCLIOpts parses args (without the program name) into CLIOpts.
func ParseCLIOpts(name string, args []string, output io.Writer) (CLIOpts, error) {
	var opt CLIOpts
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opt.ConfigPath, "config", "wgld.toml", "Read settings from this TOML file if it exists")
	fs.StringVar(&opt.Demo, "demo", "", "Run the named demo")
	fs.BoolVar(&opt.List, "list", false, "List the available demos and exit")
	fs.BoolVar(&opt.Headless, "headless", false, "Render with the software context instead of opening a window")
	fs.IntVar(&opt.Frames, "frames", 0, "Number of frames to render headless")
	fs.StringVar(&opt.Out, "out", "", "Write the last headless frame to this PNG file")
	fs.BoolVar(&opt.Strict, "strict", false, "Exit when the shader program fails to build")
	fs.BoolVar(&opt.Refresh, "refresh", false, "Pace animated demos on the display refresh")
	fs.StringVar(&opt.Shaders, "shaders", "", "Load <demo>.vert/<demo>.frag from this directory and reload them on change")
	fs.StringVar(&opt.LogLevel, "log", "", "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return opt, err
	}

	opt.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opt.set[f.Name] = true })
	return opt, nil
}

// Merge applies the flags that were set on top of conf.
func (opt CLIOpts) Merge(conf config.Config) config.Config {
	if opt.set["demo"] {
		conf.Demo = opt.Demo
	}
	if opt.set["frames"] {
		conf.Headless.Frames = opt.Frames
	}
	if opt.set["out"] {
		conf.Headless.Out = opt.Out
	}
	if opt.set["strict"] {
		conf.Strict = opt.Strict
	}
	if opt.set["refresh"] {
		conf.Refresh = opt.Refresh
	}
	if opt.set["shaders"] {
		conf.Shaders = opt.Shaders
	}
	if opt.set["log"] {
		conf.LogLevel = opt.LogLevel
	}
	return conf
}
