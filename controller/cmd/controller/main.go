// Copyright 2020 Anapaya Systems
// Copyright 2026 The sStreaming Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/sstreaming/sstreaming/controller"
	"github.com/sstreaming/sstreaming/controller/config"
	"github.com/sstreaming/sstreaming/controller/mgmtapi"
	"github.com/sstreaming/sstreaming/controller/ofdriver"
	"github.com/sstreaming/sstreaming/pkg/log"
	"github.com/sstreaming/sstreaming/pkg/private/processmetrics"
	"github.com/sstreaming/sstreaming/pkg/private/serrors"
	"github.com/sstreaming/sstreaming/private/app"
	"github.com/sstreaming/sstreaming/private/app/launcher"
	"github.com/sstreaming/sstreaming/private/service"
)

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "sStreaming Controller",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	var cleanup app.Cleanup
	g, errCtx := errgroup.WithContext(ctx)

	if err := processmetrics.Init(); err != nil {
		log.Info("Process metrics unavailable", "err", err)
	}

	// The driver delivers events to the controller, which in turn programs
	// the switches through the driver. ctrl is set before any goroutine runs.
	var ctrl *controller.Controller
	driver := ofdriver.New(
		globalCfg.OpenFlow,
		ofdriver.EventsFunc(func(ctx context.Context, ev controller.Event) error {
			return ctrl.Submit(ctx, ev)
		}),
		ofdriver.NewMetrics(),
	)
	cm := controller.NewMetrics()
	state := controller.NewState(driver, globalCfg.State(), cm)
	ctrl = controller.New(state, controller.DefaultQueueSize, cm)

	g.Go(func() error {
		defer log.HandlePanic()
		return ctrl.Run(errCtx)
	})
	cleanup.Add(func() error { return ctrl.Close(context.Background()) })

	g.Go(func() error {
		defer log.HandlePanic()
		if err := driver.Run(errCtx); err != nil {
			return serrors.Wrap("running openflow driver", err)
		}
		return nil
	})
	cleanup.Add(func() error { return driver.Close(context.Background()) })

	if globalCfg.API.Addr != "" {
		pages := service.StatusPages{
			"info":      service.NewInfoStatusPage(),
			"config":    service.NewConfigStatusPage(globalCfg),
			"log/level": service.NewLogLevelStatusPage(),
			"streams":   mgmtapi.NewStreamsStatusPage(ctrl),
		}
		handler, err := mgmtapi.NewHandler(&mgmtapi.Server{Controller: ctrl}, pages,
			globalCfg.General.ID)
		if err != nil {
			return serrors.Wrap("creating management API handler", err)
		}
		server := http.Server{
			Addr:    globalCfg.API.Addr,
			Handler: handler,
		}
		log.Info("Exposing management API", "addr", server.Addr)
		g.Go(func() error {
			defer log.HandlePanic()
			err := server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving management API", err)
			}
			return nil
		})
		cleanup.Add(server.Close)
	}

	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})

	g.Go(func() error {
		defer log.HandlePanic()
		<-errCtx.Done()
		return cleanup.Do()
	})

	return g.Wait()
}
