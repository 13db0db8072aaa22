// Copyright 2023 SCION Association
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

//go:build linux

// Package processmetrics exports scheduler statistics of the controller
// process that the default prometheus process collector lacks.
//
// The running time is the CPU time all threads consumed. The runnable time is
// the time threads were ready but not scheduled, so the CPU time available
// to the controller is
//
//	go_sched_maxprocs_threads - rate(process_runnable_seconds_total)
//
// which puts the event loop throughput into relation with the load of the
// host.
package processmetrics

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"

	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

var (
	runningTime = prometheus.NewDesc(
		"process_running_seconds_total",
		"CPU time consumed by all threads of the process.",
		nil, nil,
	)
	runnableTime = prometheus.NewDesc(
		"process_runnable_seconds_total",
		"Time the threads of the process were runnable but not running.",
		nil, nil,
	)
	maxProcs = prometheus.NewDesc(
		"go_sched_maxprocs_threads",
		"The current runtime.GOMAXPROCS setting.",
		nil, nil,
	)
	taskListUpdates = prometheus.NewDesc(
		"process_metrics_tasklist_updates_total",
		"Number of times the collector reloaded the thread list.",
		nil, nil,
	)
)

type collector struct {
	pid     int
	taskDir *os.File
	threads procfs.Procs

	taskCount uint64
	updates   int64
	running   uint64
	runnable  uint64
}

func newCollector() (*collector, error) {
	pid := os.Getpid()
	dir, err := os.Open(filepath.Join(procfs.DefaultMountPoint, strconv.Itoa(pid), "task"))
	if err != nil {
		return nil, serrors.Wrap("opening task directory", err, "pid", pid)
	}
	c := &collector{pid: pid, taskDir: dir}
	if err := c.update(); err != nil {
		dir.Close()
		return nil, serrors.Wrap("reading scheduler statistics", err, "pid", pid)
	}
	return c, nil
}

// update reads the schedstat of every thread. The thread list is only
// reloaded when the link count of the task directory changes; the Go runtime
// never terminates threads, so an unchanged count means unchanged threads.
func (c *collector) update() error {
	var st syscall.Stat_t
	if err := syscall.Fstat(int(c.taskDir.Fd()), &st); err != nil {
		return err
	}
	//nolint:unconvert // Nlink differs in type between architectures.
	count := uint64(st.Nlink - 2)
	if count != c.taskCount {
		threads, err := procfs.AllThreads(c.pid)
		if err != nil {
			return err
		}
		c.threads = threads
		c.taskCount = count
		c.updates++
	}
	var running, runnable uint64
	var errs serrors.List
	for _, t := range c.threads {
		s, err := t.Schedstat()
		if err != nil {
			// The thread is gone, the others still count.
			errs = append(errs, err)
			continue
		}
		running += s.RunningNanoseconds
		runnable += s.WaitingNanoseconds
	}
	c.running, c.runnable = running, runnable
	return errs.ToError()
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	_ = c.update()
	ch <- prometheus.MustNewConstMetric(runningTime, prometheus.CounterValue,
		float64(c.running)/1e9)
	ch <- prometheus.MustNewConstMetric(runnableTime, prometheus.CounterValue,
		float64(c.runnable)/1e9)
	ch <- prometheus.MustNewConstMetric(maxProcs, prometheus.GaugeValue,
		float64(runtime.GOMAXPROCS(-1)))
	ch <- prometheus.MustNewConstMetric(taskListUpdates, prometheus.CounterValue,
		float64(c.updates))
}

// Init registers the collector with the default prometheus registry. It must
// be called at most once. Errors can be ignored at the cost of missing
// metrics.
func Init() error {
	c, err := newCollector()
	if err != nil {
		return err
	}
	if err := prometheus.Register(c); err != nil {
		c.taskDir.Close()
		return serrors.Wrap("registering process collector", err)
	}
	return nil
}
