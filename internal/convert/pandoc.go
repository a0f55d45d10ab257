// SPDX-License-Identifier: AGPL-3.0-or-later

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single pandoc run.
const DefaultTimeout = 5 * time.Minute

// Pandoc converts documents by running the pandoc binary.
type Pandoc struct {
	Bin     string
	Timeout time.Duration
	Log     logrus.FieldLogger
}

// NewPandoc returns a Pandoc converter. Empty bin means "pandoc" on PATH.
func NewPandoc(bin string, timeout time.Duration, log logrus.FieldLogger) *Pandoc {
	if bin == "" {
		bin = "pandoc"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pandoc{Bin: bin, Timeout: timeout, Log: log}
}

// Convert implements Converter. Markdown is fed on stdin.
func (p *Pandoc) Convert(ctx context.Context, job Job) error {
	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	args := Args(job)
	p.Log.WithFields(logrus.Fields{"output": job.Output, "format": job.Format}).Debugf("running %s %s", p.Bin, strings.Join(args, " "))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Bin, args...)
	cmd.Stdin = strings.NewReader(job.Markdown)
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		return &Error{
			Output:   job.Output,
			Stderr:   stderr.String(),
			TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      err,
		}
	}
	return nil
}

// Args builds the pandoc command line for a job.
func Args(job Job) []string {
	args := []string{"--from=gfm", "-o", job.Output}

	if job.Options.TOC {
		depth := job.Options.TOCDepth
		if depth <= 0 {
			depth = 2
		}
		args = append(args, "--table-of-contents", "--toc-depth="+strconv.Itoa(depth))
	}
	if job.Options.NumberSections {
		args = append(args, "--number-sections")
	}

	if job.Options.Title != "" {
		args = append(args, "--metadata", "title="+job.Options.Title)
	}
	if job.Options.Author != "" {
		args = append(args, "--metadata", "author="+job.Options.Author)
	}

	switch job.Format {
	case PDF:
		args = append(args, "--pdf-engine=xelatex")
		if f := job.Options.Fonts.Main; f != "" {
			args = append(args, "--variable", "mainfont="+f)
		}
		if f := job.Options.Fonts.Header; f != "" {
			args = append(args, "--variable", "sansfont="+f)
		}
		if f := job.Options.Fonts.Code; f != "" {
			args = append(args, "--variable", "monofont="+f)
		}
	case ODT:
		if ref := job.Options.ReferenceDoc; ref != "" {
			if _, err := os.Stat(ref); err == nil {
				args = append(args, "--reference-doc", ref)
			}
		}
	}

	return args
}
