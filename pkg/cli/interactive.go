package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Fepozopo/normalmap/pkg/canvas"
	"github.com/Fepozopo/normalmap/pkg/config"
	"github.com/Fepozopo/normalmap/pkg/stdimg"
)

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive [image]",
		Aliases: []string{"i"},
		Short:   "Open an image and apply commands from a prompt",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(ctx, configFromContext(ctx), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if err := s.open(args[0]); err != nil {
					return err
				}
			}
			return s.run()
		},
	}
}

// engineFromConfig builds an engine whose defaults come from cfg.
func engineFromConfig(cfg config.Config) (*stdimg.Engine, error) {
	sel, centered, err := cfg.Estimator()
	if err != nil {
		return nil, err
	}
	ren, err := cfg.Renormalizer()
	if err != nil {
		return nil, err
	}
	return &stdimg.Engine{
		Selection:   sel,
		CenterSet:   centered,
		Renormalize: ren,
		FullImage:   cfg.Renormalize.FullImage,
	}, nil
}

// session is the state of one interactive run.
type session struct {
	ctx       context.Context
	in        *bufio.Reader
	out       io.Writer
	logger    *log.Logger
	store     *StdMetaStore
	engine    *stdimg.Engine
	threshold uint8

	doc    *canvas.Document
	format string
}

func newSession(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) (*session, error) {
	eng, err := engineFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	th, err := cfg.MaskThreshold()
	if err != nil {
		return nil, err
	}
	return &session{
		ctx:       ctx,
		in:        bufio.NewReader(in),
		out:       out,
		logger:    loggerFromContext(ctx),
		store:     NewMetaStoreFromStdimg(stdimg.Commands),
		engine:    eng,
		threshold: th,
	}, nil
}

func (s *session) usage() {
	fmt.Fprintln(s.out, "Commands available:")
	fmt.Fprintln(s.out, "  /  - select and apply command")
	fmt.Fprintln(s.out, "  o  - open another image")
	fmt.Fprintln(s.out, "  m  - load a selection mask")
	fmt.Fprintln(s.out, "  s  - save the top layer")
	fmt.Fprintln(s.out, "  f  - save the flattened image")
	fmt.Fprintln(s.out, "  u  - check for updates")
	fmt.Fprintln(s.out, "  h  - show this help message")
	fmt.Fprintln(s.out, "  q  - quit")
}

func (s *session) prompt(p string) (string, error) {
	return promptFrom(s.in, s.out, p)
}

func (s *session) confirm(p string) (bool, error) {
	answer, err := s.prompt(p)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func (s *session) open(path string) error {
	doc, format, err := openDocument(path)
	if err != nil {
		return err
	}
	base, err := doc.Active()
	if err != nil {
		return err
	}
	m, err := maskFromImage(base.Image, "alpha")
	if err != nil {
		return err
	}
	m.SetThreshold(s.threshold)
	doc.SetSelection(m)
	s.doc, s.format = doc, format
	fmt.Fprintf(s.out, "Opened %s\n", path)
	if info, err := GetImageInfoImage(base.Image, format); err == nil {
		fmt.Fprintln(s.out, info)
	}
	return nil
}

// run reads commands until q or end of input.
func (s *session) run() error {
	fmt.Fprintln(s.out, "normalmap interactive")
	s.usage()
	for {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		line, err := s.prompt("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		switch line[0] {
		case '/':
			s.apply(strings.TrimSpace(line[1:]))
		case 'o':
			path, _ := s.prompt("Enter path to image to open (leave empty to cancel): ")
			if path == "" {
				fmt.Fprintln(s.out, "open cancelled")
				continue
			}
			if err := s.open(path); err != nil {
				s.logger.Error("open failed", "path", path, "err", err)
			}
		case 'm':
			s.loadMask()
		case 's', 'f':
			s.save(line[0] == 'f')
		case 'u':
			if err := CheckForUpdates(s.ctx, s.out, s.logger, s.confirm); err != nil {
				s.logger.Error("update check failed", "err", err)
			}
		case 'h':
			s.usage()
		case 'q':
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			fmt.Fprintf(s.out, "unknown key %q, press h for help\n", line[0])
		}
	}
}

// pickCommand resolves a number, name or unique name prefix. An empty
// selection lists the commands and asks.
func (s *session) pickCommand(selection string) (string, bool) {
	if selection == "" {
		fmt.Fprintln(s.out, "Command selection:")
		for i, c := range s.store.Commands {
			fmt.Fprintf(s.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
		}
		selection, _ = s.prompt("Enter number or command name (leave empty to cancel): ")
		if selection == "" {
			fmt.Fprintln(s.out, "selection cancelled")
			return "", false
		}
	}
	if idx, err := strconv.Atoi(selection); err == nil {
		if idx < 1 || idx > len(s.store.Commands) {
			fmt.Fprintln(s.out, "invalid selection")
			return "", false
		}
		return s.store.Commands[idx-1].Name, true
	}
	lower := strings.ToLower(selection)
	var matches []string
	for _, c := range s.store.Commands {
		name := strings.ToLower(c.Name)
		if name == lower {
			return c.Name, true
		}
		if strings.HasPrefix(name, lower) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], true
	case 0:
		fmt.Fprintf(s.out, "unknown command: %s\n", selection)
	default:
		fmt.Fprintln(s.out, "ambiguous selection, candidates:")
		for _, m := range matches {
			fmt.Fprintln(s.out, "  "+m)
		}
	}
	return "", false
}

func (s *session) apply(selection string) {
	if s.doc == nil {
		fmt.Fprintln(s.out, "No image loaded. Press 'o' to open an image first.")
		return
	}
	name, ok := s.pickCommand(selection)
	if !ok {
		return
	}
	tooltip, _, err := s.store.GetCommandHelp(name)
	if err != nil {
		fmt.Fprintf(s.out, "unknown command: %s\n", name)
		return
	}
	fmt.Fprintln(s.out, "\n"+tooltip+"\n")

	spec, _ := stdimg.Lookup(name)
	raw := make([]string, len(spec.Args))
	for i, a := range spec.Args {
		label := a.Type
		if a.Default != "" {
			label += ", default " + a.Default
		}
		raw[i], _ = s.prompt(fmt.Sprintf("%s (%s): ", a.Name, label))
	}
	args, err := NormalizeArgsFromStd(s.store, name, raw)
	if err != nil {
		fmt.Fprintf(s.out, "input validation error: %v\n", err)
		fmt.Fprintln(s.out, "aborting command due to input errors")
		return
	}

	p := newProgress(s.logger)
	res, err := s.engine.Apply(s.ctx, s.doc, name, args)
	if err != nil {
		s.logger.Error("apply command failed", "command", name, "err", err)
		return
	}
	p.done(fmt.Sprintf("Applied %s", name))
	reportPixels(s.logger, res.Report)
	if res.Info != "" {
		fmt.Fprint(s.out, res.Info)
	}
	if res.Layer != nil {
		fmt.Fprintf(s.out, "New layer %q, %d layers\n", res.Layer.Name, len(s.doc.Layers()))
	}
}

func (s *session) loadMask() {
	if s.doc == nil {
		fmt.Fprintln(s.out, "No image loaded. Press 'o' to open an image first.")
		return
	}
	path, _ := s.prompt("Enter path to mask image (leave empty to cancel): ")
	if path == "" {
		fmt.Fprintln(s.out, "mask cancelled")
		return
	}
	ch, _ := s.prompt("Channel, alpha or luminance (luminance): ")
	if ch == "" {
		ch = "luminance"
	}
	m, err := loadMask(path, ch)
	if err != nil {
		s.logger.Error("mask failed", "path", path, "err", err)
		return
	}
	m.SetThreshold(s.threshold)
	s.doc.SetSelection(m)
	fmt.Fprintf(s.out, "Selection loaded from %s\n", path)
}

func (s *session) save(flattened bool) {
	if s.doc == nil {
		fmt.Fprintln(s.out, "No image loaded.")
		return
	}
	out, _ := s.prompt("Enter output filename: ")
	if out == "" {
		fmt.Fprintln(s.out, "no filename provided")
		return
	}
	var err error
	if flattened {
		err = SaveImage(out, s.doc.Flatten())
	} else {
		var top *canvas.Layer
		if top, err = s.doc.Layer(0); err == nil {
			err = SaveImage(out, top.Image)
		}
	}
	if err != nil {
		s.logger.Error("failed to write image", "path", out, "err", err)
		return
	}
	fmt.Fprintf(s.out, "Saved to %s\n", out)
}
