package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/metalbroker/metalbroker/internal/metrics"
	"github.com/metalbroker/metalbroker/internal/models"
)

// OfferSweepStore is the store surface the reconciler needs for offers.
type OfferSweepStore interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, offerUUID string, expected, next models.Status) (bool, error)
}

// LeaseSweepStore is the store surface the reconciler needs for leases.
type LeaseSweepStore interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.Lease, error)
	UpdateStatus(ctx context.Context, leaseUUID string, expected, next models.Status) (bool, error)
}

// OwnerChangeSweepStore is the store surface the reconciler needs for owner
// changes. Fulfill couples the status change with the catalog owner update.
type OwnerChangeSweepStore interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.OwnerChange, error)
	UpdateStatus(ctx context.Context, changeUUID string, expected, next models.Status) (bool, error)
	Fulfill(ctx context.Context, changeUUID string) (bool, error)
}

// Reconciler periodically advances offer, lease, and owner change statuses
// against the current time. Each tick runs the sweep phases in a fixed
// order — fulfill before expire per entity kind — so an entity whose whole
// window has already elapsed lands in expired within a single tick.
//
// Phases are independent: a failing phase is logged and the rest still run.
// Within a phase, a failing entity is logged and skipped; it stays in its
// pre-transition status and is retried on the next tick.
type Reconciler struct {
	offers       OfferSweepStore
	leases       LeaseSweepStore
	ownerChanges OwnerChangeSweepStore
	log          *logrus.Logger
	interval     time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewReconciler creates a Reconciler sweeping at the given interval.
func NewReconciler(offers OfferSweepStore, leases LeaseSweepStore, ownerChanges OwnerChangeSweepStore, log *logrus.Logger, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Reconciler{
		offers:       offers,
		leases:       leases,
		ownerChanges: ownerChanges,
		log:          log,
		interval:     interval,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.Tick(ctx)
		}
	}
}

// Tick executes one full sweep. Fulfill phases run before expire phases so
// both transitions of an already-elapsed entity happen in the same tick.
func (r *Reconciler) Tick(ctx context.Context) {
	start := time.Now()

	r.runPhase(ctx, "fulfill_leases", r.fulfillLeases)
	r.runPhase(ctx, "expire_leases", r.expireLeases)
	r.runPhase(ctx, "expire_offers", r.expireOffers)
	r.runPhase(ctx, "fulfill_owner_changes", r.fulfillOwnerChanges)
	r.runPhase(ctx, "expire_owner_changes", r.expireOwnerChanges)

	r.log.WithField("duration", time.Since(start).String()).Debug("reconciliation tick complete")
}

// runPhase executes one sweep phase, recording its duration and containing
// its failure.
func (r *Reconciler) runPhase(ctx context.Context, name string, phase func(context.Context) error) {
	start := time.Now()

	if err := phase(ctx); err != nil {
		metrics.SweepErrorsTotal.WithLabelValues(name).Inc()
		r.log.WithError(err).WithField("phase", name).Warn("sweep phase failed")
	}

	metrics.SweepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// fulfillLeases activates created leases whose start time has passed.
func (r *Reconciler) fulfillLeases(ctx context.Context) error {
	leases, err := r.leases.List(ctx, models.ListFilter{
		Statuses: []models.Status{models.StatusCreated},
	})
	if err != nil {
		return err
	}

	now := r.now()

	for i := range leases {
		l := &leases[i]

		if l.StartTime.After(now) {
			continue
		}

		if err := r.FulfillLease(ctx, l); err != nil {
			r.log.WithError(err).WithField("lease_uuid", l.UUID).Warn("lease fulfill failed, will retry")
		}
	}

	return nil
}

// expireLeases expires active and created leases whose end time has
// passed. A created lease whose window fully elapsed without activation
// expires rather than activating.
func (r *Reconciler) expireLeases(ctx context.Context) error {
	leases, err := r.leases.List(ctx, models.ListFilter{
		Statuses: []models.Status{models.StatusActive, models.StatusCreated},
	})
	if err != nil {
		return err
	}

	now := r.now()

	for i := range leases {
		l := &leases[i]

		if l.EndTime.After(now) {
			continue
		}

		if err := r.ExpireLease(ctx, l); err != nil {
			r.log.WithError(err).WithField("lease_uuid", l.UUID).Warn("lease expire failed, will retry")
		}
	}

	return nil
}

// expireOffers expires available offers whose end time has passed.
func (r *Reconciler) expireOffers(ctx context.Context) error {
	offers, err := r.offers.List(ctx, models.ListFilter{
		Statuses: []models.Status{models.StatusAvailable},
	})
	if err != nil {
		return err
	}

	now := r.now()

	for i := range offers {
		o := &offers[i]

		if o.EndTime.After(now) {
			continue
		}

		ok, err := r.offers.UpdateStatus(ctx, o.UUID, models.StatusAvailable, models.StatusExpired)
		if err != nil {
			r.log.WithError(err).WithField("offer_uuid", o.UUID).Warn("offer expire failed, will retry")

			continue
		}

		if ok {
			metrics.TransitionsTotal.WithLabelValues("offer", "expire").Inc()
		}
	}

	return nil
}

// fulfillOwnerChanges activates created owner changes whose start time has
// passed, flipping the resource's recorded owner as part of the same
// transaction.
func (r *Reconciler) fulfillOwnerChanges(ctx context.Context) error {
	changes, err := r.ownerChanges.List(ctx, models.ListFilter{
		Statuses: []models.Status{models.StatusCreated},
	})
	if err != nil {
		return err
	}

	now := r.now()

	for i := range changes {
		c := &changes[i]

		if c.StartTime.After(now) {
			continue
		}

		ok, err := r.ownerChanges.Fulfill(ctx, c.UUID)
		if err != nil {
			r.log.WithError(err).WithField("change_uuid", c.UUID).Warn("owner change fulfill failed, will retry")

			continue
		}

		if ok {
			metrics.TransitionsTotal.WithLabelValues("owner_change", "fulfill").Inc()
			r.log.WithFields(logrus.Fields{
				"change_uuid":   c.UUID,
				"resource_uuid": c.ResourceUUID,
				"to_project":    c.ToProjectID,
			}).Info("owner change activated")
		}
	}

	return nil
}

// expireOwnerChanges expires active and created owner changes whose end
// time has passed.
func (r *Reconciler) expireOwnerChanges(ctx context.Context) error {
	changes, err := r.ownerChanges.List(ctx, models.ListFilter{
		Statuses: []models.Status{models.StatusActive, models.StatusCreated},
	})
	if err != nil {
		return err
	}

	now := r.now()

	for i := range changes {
		c := &changes[i]

		if c.EndTime.After(now) {
			continue
		}

		ok, err := r.ownerChanges.UpdateStatus(ctx, c.UUID, c.Status, models.StatusExpired)
		if err != nil {
			r.log.WithError(err).WithField("change_uuid", c.UUID).Warn("owner change expire failed, will retry")

			continue
		}

		if ok {
			metrics.TransitionsTotal.WithLabelValues("owner_change", "expire").Inc()
		}
	}

	return nil
}

// FulfillLease activates a created lease. Re-applying to an already-active
// lease is a no-op, never an error.
func (r *Reconciler) FulfillLease(ctx context.Context, l *models.Lease) error {
	if l.Status == models.StatusActive {
		return nil
	}

	ok, err := r.leases.UpdateStatus(ctx, l.UUID, models.StatusCreated, models.StatusActive)
	if err != nil {
		return err
	}

	if !ok {
		// Lost race: another sweep or a cancellation got there first. The
		// next tick re-reads current status.
		r.log.WithField("lease_uuid", l.UUID).Debug("lease fulfill lost update race")

		return nil
	}

	metrics.TransitionsTotal.WithLabelValues("lease", "fulfill").Inc()

	return nil
}

// ExpireLease expires a lease from whichever live status it is in.
// Re-applying to an already-expired lease is a no-op, never an error.
func (r *Reconciler) ExpireLease(ctx context.Context, l *models.Lease) error {
	if l.Status == models.StatusExpired {
		return nil
	}

	ok, err := r.leases.UpdateStatus(ctx, l.UUID, l.Status, models.StatusExpired)
	if err != nil {
		return err
	}

	if !ok {
		r.log.WithField("lease_uuid", l.UUID).Debug("lease expire lost update race")

		return nil
	}

	metrics.TransitionsTotal.WithLabelValues("lease", "expire").Inc()

	return nil
}
