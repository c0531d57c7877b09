package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/nordiqa/partnerops/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPollInterval   = 15 * time.Minute
	maxConcurrentRefresh  = 5
	noCustomerRetryPeriod = time.Minute
)

// Poller periodically recomputes forecasts for all active customers so
// snapshots stay fresh between dashboard visits.
type Poller struct {
	db           *gorm.DB
	svc          *Service
	interval     time.Duration
	hadCustomers bool
}

// NewPoller constructs a forecast poller.
func NewPoller(db *gorm.DB, svc *Service) *Poller {
	if db == nil || svc == nil {
		return nil
	}
	return &Poller{
		db:       db,
		svc:      svc,
		interval: defaultPollInterval,
	}
}

// Start launches the polling loop in a background goroutine.
func (p *Poller) Start(ctx context.Context) {
	if p == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go p.run(ctx)
	log.Infof("forecast poller started (interval=%s)", p.interval)
}

func (p *Poller) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		interval := p.poll(ctx)
		if ctx.Err() != nil {
			return
		}
		if interval <= 0 {
			interval = p.interval
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) time.Duration {
	if p == nil {
		return 0
	}

	var ids []uint64
	if errFind := p.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error; errFind != nil {
		log.WithError(errFind).Warn("forecast poller: load customers failed")
		return p.interval
	}
	if len(ids) == 0 {
		if !p.hadCustomers {
			return noCustomerRetryPeriod
		}
		return p.interval
	}
	p.hadCustomers = true

	sem := make(chan struct{}, maxConcurrentRefresh)
	var wg sync.WaitGroup
	for _, id := range ids {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return p.interval
		}

		wg.Add(1)
		go func(customerID uint64) {
			defer wg.Done()
			defer func() { <-sem }()

			p.svc.Invalidate(ctx, customerID)
			if _, errForecast := p.svc.ForecastCustomer(ctx, customerID); errForecast != nil {
				log.WithError(errForecast).WithField("customer_id", customerID).
					Warn("forecast poller: refresh failed")
			}
		}(id)
	}
	wg.Wait()
	return p.interval
}
