package app

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"github.com/talkincode/storefront/internal/taskq"
	"github.com/talkincode/storefront/pkg/metrics"
	"go.uber.org/zap"
)

const (
	MetricQueueRunning = "order_queue_running"
	taskLogRetention   = 90 * 24 * time.Hour
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", a.SchedClearExpireData)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// subscribeOrderEvents samples the queue load whenever a task finishes
func (a *Application) subscribeOrderEvents() error {
	handler := func(ev taskq.OrderEvent) {
		if a.queue != nil {
			metrics.SetGauge(MetricQueueRunning, int64(a.queue.Running()))
		}
		if ev.Result.Failed() {
			zap.L().Debug("order event", zap.String("task_id", ev.TaskID), zap.String("error", ev.Result.Error))
		}
	}
	if err := a.bus.SubscribeAsync(taskq.TopicOrderProcessed, handler, false); err != nil {
		return err
	}
	return a.bus.SubscribeAsync(taskq.TopicOrderFailed, handler, false)
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // percentage * 100
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("storefront_cpuuse", int64(cpuuse*100))
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("storefront_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedClearExpireData purges order task logs past retention
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	n, err := a.taskLogs.DeleteOlderThan(context.Background(), time.Now().Add(-taskLogRetention))
	if err != nil {
		zap.L().Error("failed to purge order task logs", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged order task logs", zap.String("namespace", "jobs"), zap.Int64("count", n))
	}
}
