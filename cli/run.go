// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cliUtil "github.com/purpleidea/genson/cli/util"
	"github.com/purpleidea/genson/lang"
	"github.com/purpleidea/genson/prometheus"
	"github.com/purpleidea/genson/util"
	"github.com/purpleidea/genson/util/errwrap"
	"github.com/purpleidea/genson/util/recwatch"
)

// RunArgs is the CLI parsing structure and type of the parsed result. This
// particular one contains all the flags for the `run` subcommand.
type RunArgs struct {
	cliUtil.TemplateArgs // embedded (can't be a pointer) https://github.com/alexflint/go-arg/issues/240
	cliUtil.OutputArgs

	Limit *int `arg:"--limit" help:"stop after this many documents"`

	Watch bool `arg:"--watch" help:"enumerate again whenever the input file changes"`

	Config string `arg:"--config,env:GENSON_CONFIG" help:"yaml file with default flag values"`

	Prometheus         bool   `arg:"--prometheus" help:"start a prometheus instance"`
	PrometheusListen   string `arg:"--prometheus-listen" help:"specify prometheus instance binding"`
	PrometheusTextfile string `arg:"--prometheus-textfile" help:"write the metrics to this file after each pass"`
}

// Run executes the correct subcommand. It errors if there's ever an error. It
// returns true if we did activate one of the subcommands. It returns false if
// we did not. This information is used so that the top-level parser can return
// usage or help information if no subcommand activates. This particular Run is
// the run for the main `run` subcommand. It writes every document of one pass
// to stdout, and in watch mode it does it again each time the input changes.
func (obj *RunArgs) Run(ctx context.Context, data *cliUtil.Data) (_ bool, reterr error) {
	var config *cliUtil.Config
	if obj.Config != "" {
		var err error
		if config, err = cliUtil.LoadConfig(data.Fs, obj.Config); err != nil {
			return false, err
		}
	}
	settings := config.Merge(obj.TemplateArgs, obj.OutputArgs)
	if obj.Limit != nil {
		settings.Limit = *obj.Limit
	}
	if data.Flags.Debug {
		settings.Debug = true
	}
	if !util.StrInList(settings.Format, cliUtil.Formats()) {
		return false, cliUtil.CliParseError(errwrap.Wrapf(cliUtil.UnknownFormat, "%s", settings.Format))
	}
	if obj.Watch && obj.Input == cliUtil.Stdin {
		return false, cliUtil.CliParseError(fmt.Errorf("can't watch stdin"))
	}

	Logf := func(format string, v ...interface{}) {
		data.Flags.Logf("run: "+format, v...)
	}
	cliUtil.Hello(data.Program, data.Version, data.Flags) // say hello!
	defer func() {
		if settings.Debug {
			Logf("goodbye!")
		}
	}()

	var prom *prometheus.Prometheus
	if obj.Prometheus || obj.PrometheusTextfile != "" {
		prom = &prometheus.Prometheus{
			Listen: obj.PrometheusListen,
			Logf: func(format string, v ...interface{}) {
				Logf("prometheus: "+format, v...)
			},
		}
		if err := prom.Init(); err != nil {
			return false, errwrap.Wrapf(err, "can't initialize prometheus instance")
		}
	}
	if obj.Prometheus {
		Logf("prometheus: starting instance on: %s", prom.Listen)
		if err := prom.Start(); err != nil {
			return false, errwrap.Wrapf(err, "can't start prometheus instance")
		}
		defer func() {
			if err := prom.Stop(); err != nil {
				reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "can't stop prometheus instance"))
			}
		}()
	}

	// install the exit signal handler
	wg := &sync.WaitGroup{}
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // runs before the wait
	wg.Add(1)
	go func() {
		defer wg.Done()
		// must have buffer for max number of signals
		signals := make(chan os.Signal, 1+1) // 1 * ^C + 1 * SIGTERM
		signal.Notify(signals, os.Interrupt) // catch ^C
		signal.Notify(signals, syscall.SIGTERM)
		defer signal.Stop(signals)
		select {
		case sig := <-signals: // any signal will do
			Logf("interrupted by signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	pass := func() error {
		template, err := cliUtil.ReadTemplate(data, obj.Input)
		if err != nil {
			return err
		}
		e := &lang.Enumerator{
			Template:   template,
			Seed:       settings.Seed,
			Prometheus: prom,
			Debug:      settings.Debug,
			Logf: func(format string, v ...interface{}) {
				Logf("enumerator: "+format, v...)
			},
		}
		if err := e.Init(); err != nil {
			return err
		}
		count := 0
		for doc, err := range e.All() {
			if err != nil {
				return err
			}
			if err := cliUtil.Write(data.Stdout, doc, settings.Format, settings.Pretty); err != nil {
				return errwrap.Wrapf(err, "can't write document %d", count)
			}
			count++
			if settings.Limit > 0 && count >= settings.Limit {
				break
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		if settings.Debug {
			Logf("wrote %d documents", count)
		}
		if obj.PrometheusTextfile != "" {
			if err := prom.WriteTextfile(obj.PrometheusTextfile); err != nil {
				return errwrap.Wrapf(err, "can't write metrics")
			}
		}
		return nil
	}

	if !obj.Watch {
		if err := pass(); err != nil {
			return false, err
		}
		return true, nil
	}

	watcher := &recwatch.RecWatcher{
		Path:  obj.Input,
		Debug: settings.Debug,
		Logf: func(format string, v ...interface{}) {
			Logf("watch: "+format, v...)
		},
	}
	if err := watcher.Init(); err != nil {
		return false, err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			reterr = errwrap.Append(reterr, errwrap.Wrapf(err, "can't close watcher"))
		}
	}()

	for {
		if err := pass(); err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			// a broken template is not fatal while watching
			Logf("pass failed: %+v", err)
		}
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return true, nil
			}
			if err := event.Error; err != nil {
				return false, errwrap.Wrapf(err, "watch error")
			}
			if settings.Debug {
				Logf("input changed: %v", event.Body)
			}
		case <-ctx.Done():
			return true, nil
		}
	}
}
