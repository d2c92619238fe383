// internal/app/system/workers/reconcile.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Reconcile is a background worker that repairs the redundant links between
// collections after an interrupted sequential cascade: user documents
// pointing at deleted groups, group car arrays pointing at deleted cars, and
// invitations for groups that no longer exist.
//
// On deployments with transactions this never finds anything; it exists for
// the standalone-Mongo fallback path.
type Reconcile struct {
	db       *mongo.Database
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewReconcile creates a new reconcile worker that runs every interval.
func NewReconcile(db *mongo.Database, logger *zap.Logger, interval time.Duration) *Reconcile {
	return &Reconcile{
		db:       db,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background repair loop.
func (w *Reconcile) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reconcile worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Reconcile) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reconcile worker stopped")
}

func (w *Reconcile) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RepairOnce()
		}
	}
}

// RepairOnce runs a single repair pass. Exported so tests and an operator
// endpoint can trigger it without waiting for the ticker.
func (w *Reconcile) RepairOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	liveGroups, err := w.collectIDs(ctx, "groups")
	if err != nil {
		w.log.Error("reconcile: failed to list groups", zap.Error(err))
		return
	}

	w.repairUserGroupRefs(ctx, liveGroups)
	w.repairOrphanedCars(ctx, liveGroups)
	w.repairOrphanedInvitations(ctx, liveGroups)
	w.repairGroupCarRefs(ctx)
}

func (w *Reconcile) collectIDs(ctx context.Context, coll string) (map[string]bool, error) {
	cur, err := w.db.Collection(coll).Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := map[string]bool{}
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		ids[doc.ID] = true
	}
	return ids, cur.Err()
}

// repairUserGroupRefs pulls deleted group ids out of user.groups arrays.
func (w *Reconcile) repairUserGroupRefs(ctx context.Context, liveGroups map[string]bool) {
	cur, err := w.db.Collection("users").Find(ctx, bson.M{"groups": bson.M{"$ne": []string{}}})
	if err != nil {
		w.log.Error("reconcile: failed to list users", zap.Error(err))
		return
	}
	defer cur.Close(ctx)

	var repaired int64
	for cur.Next(ctx) {
		var u struct {
			ID     string   `bson:"_id"`
			Groups []string `bson:"groups"`
		}
		if err := cur.Decode(&u); err != nil {
			continue
		}
		var dangling []string
		for _, g := range u.Groups {
			if !liveGroups[g] {
				dangling = append(dangling, g)
			}
		}
		if len(dangling) == 0 {
			continue
		}
		_, err := w.db.Collection("users").UpdateByID(ctx, u.ID,
			bson.M{"$pull": bson.M{"groups": bson.M{"$in": dangling}}})
		if err != nil {
			w.log.Error("reconcile: failed to repair user groups",
				zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		repaired++
	}
	if repaired > 0 {
		w.log.Info("reconcile: repaired dangling user group refs", zap.Int64("users", repaired))
	}
}

// repairOrphanedCars deletes cars whose owning group is gone.
func (w *Reconcile) repairOrphanedCars(ctx context.Context, liveGroups map[string]bool) {
	w.deleteWhereGroupDead(ctx, "cars", liveGroups)
}

// repairOrphanedInvitations deletes invitations to groups that are gone.
func (w *Reconcile) repairOrphanedInvitations(ctx context.Context, liveGroups map[string]bool) {
	w.deleteWhereGroupDead(ctx, "invitations", liveGroups)
}

func (w *Reconcile) deleteWhereGroupDead(ctx context.Context, coll string, liveGroups map[string]bool) {
	cur, err := w.db.Collection(coll).Find(ctx, bson.M{})
	if err != nil {
		w.log.Error("reconcile: failed to list "+coll, zap.Error(err))
		return
	}
	defer cur.Close(ctx)

	var dead []string
	for cur.Next(ctx) {
		var doc struct {
			ID      string `bson:"_id"`
			GroupID string `bson:"groupId"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		if !liveGroups[doc.GroupID] {
			dead = append(dead, doc.ID)
		}
	}
	if len(dead) == 0 {
		return
	}
	res, err := w.db.Collection(coll).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": dead}})
	if err != nil {
		w.log.Error("reconcile: failed to delete orphaned "+coll, zap.Error(err))
		return
	}
	w.log.Info("reconcile: deleted orphaned documents",
		zap.String("collection", coll),
		zap.Int64("count", res.DeletedCount))
}

// repairGroupCarRefs pulls deleted car ids out of group.cars arrays.
func (w *Reconcile) repairGroupCarRefs(ctx context.Context) {
	liveCars, err := w.collectIDs(ctx, "cars")
	if err != nil {
		w.log.Error("reconcile: failed to list cars", zap.Error(err))
		return
	}

	cur, err := w.db.Collection("groups").Find(ctx, bson.M{"cars": bson.M{"$ne": []string{}}})
	if err != nil {
		w.log.Error("reconcile: failed to list groups", zap.Error(err))
		return
	}
	defer cur.Close(ctx)

	var repaired int64
	for cur.Next(ctx) {
		var g struct {
			ID   string   `bson:"_id"`
			Cars []string `bson:"cars"`
		}
		if err := cur.Decode(&g); err != nil {
			continue
		}
		var dangling []string
		for _, c := range g.Cars {
			if !liveCars[c] {
				dangling = append(dangling, c)
			}
		}
		if len(dangling) == 0 {
			continue
		}
		_, err := w.db.Collection("groups").UpdateByID(ctx, g.ID,
			bson.M{"$pull": bson.M{"cars": bson.M{"$in": dangling}}})
		if err != nil {
			w.log.Error("reconcile: failed to repair group cars",
				zap.String("group_id", g.ID), zap.Error(err))
			continue
		}
		repaired++
	}
	if repaired > 0 {
		w.log.Info("reconcile: repaired dangling group car refs", zap.Int64("groups", repaired))
	}
}
