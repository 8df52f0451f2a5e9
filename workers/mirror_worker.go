package workers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quest-rewards-system/models"
)

// MirrorWorker persists upsert notifications to postgres in the background.
// The in-memory state is the source of truth: writes here are best-effort,
// never block the caller, and failures are logged rather than propagated.
type MirrorWorker struct {
	db    *gorm.DB
	queue chan any
}

func NewMirrorWorker(db *gorm.DB) *MirrorWorker {
	return &MirrorWorker{
		db:    db,
		queue: make(chan any, 256),
	}
}

// Start consumes the queue until ctx is cancelled, then drains what is left.
func (w *MirrorWorker) Start(ctx context.Context) {
	log.Info("mirror worker started")
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case record := <-w.queue:
					w.persist(record)
				default:
					log.Info("mirror worker stopped")
					return
				}
			}
		case record := <-w.queue:
			w.persist(record)
		}
	}
}

func (w *MirrorWorker) UpsertUser(u *models.User)             { w.enqueue(u) }
func (w *MirrorWorker) UpsertQuest(q *models.Quest)           { w.enqueue(q) }
func (w *MirrorWorker) UpsertSubmission(s *models.Submission) { w.enqueue(s) }
func (w *MirrorWorker) UpsertReward(r *models.Reward)         { w.enqueue(r) }

// enqueue never blocks: if the queue is full the record is dropped and the
// next mutation of the same row will re-mirror it.
func (w *MirrorWorker) enqueue(record any) {
	select {
	case w.queue <- record:
	default:
		log.WithField("record", record).Warn("mirror queue full, dropping upsert")
	}
}

func (w *MirrorWorker) persist(record any) {
	err := w.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
	if err != nil {
		log.WithError(err).WithField("record", record).Error("mirror upsert failed")
	}
}
