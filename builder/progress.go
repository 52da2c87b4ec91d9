package builder

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ProgressMonitor is notified once per residual evaluation. It must not block
// and, when sensitivities run with several workers, must be safe for concurrent use.
type ProgressMonitor interface {
	Reset()
	Update()
}

// LogProgress counts residual evaluations and logs every 10th at debug level
// and every 100th at info level.
type LogProgress struct {
	log   logrus.FieldLogger
	count atomic.Int64
}

func NewLogProgress(log logrus.FieldLogger) *LogProgress {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogProgress{log: log}
}

func (p *LogProgress) Reset() { p.count.Store(0) }

func (p *LogProgress) Update() {
	n := p.count.Add(1)
	switch {
	case n%100 == 0:
		p.log.WithField("evaluations", n).Info("calibration progress")
	case n%10 == 0:
		p.log.WithField("evaluations", n).Debug("calibration progress")
	}
}

// Count returns the evaluations seen since the last Reset.
func (p *LogProgress) Count() int64 { return p.count.Load() }
