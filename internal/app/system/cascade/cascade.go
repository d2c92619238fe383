// internal/app/system/cascade/cascade.go

// Package cascade implements the multi-collection writes that keep the
// redundant membership and car links consistent: removing a member, deleting
// a group with everything in it, and deleting an account.
//
// Each flow runs inside a transaction where the deployment supports one and
// falls back to ordered sequential writes where it doesn't. The write order
// is chosen so that an interrupted fallback leaves only dangling references
// (repaired by the reconcile worker), never orphaned documents that a user
// could still see.
package cascade

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	carstore "github.com/tagauto/tagauto/internal/app/store/cars"
	groupstore "github.com/tagauto/tagauto/internal/app/store/groups"
	invitationstore "github.com/tagauto/tagauto/internal/app/store/invitations"
	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	"github.com/tagauto/tagauto/internal/app/system/txn"
	"github.com/tagauto/tagauto/internal/domain/models"
)

type Service struct {
	client      *mongo.Client
	users       *userstore.Store
	groups      *groupstore.Store
	cars        *carstore.Store
	invitations *invitationstore.Store
	log         *zap.Logger
}

func New(client *mongo.Client, db *mongo.Database, log *zap.Logger) *Service {
	return &Service{
		client:      client,
		users:       userstore.New(db),
		groups:      groupstore.New(db),
		cars:        carstore.New(db),
		invitations: invitationstore.New(db),
		log:         log,
	}
}

// CreateGroup inserts a group founded by the given user and links it into
// the founder's groups array in the same unit of work.
func (s *Service) CreateGroup(ctx context.Context, name, founderID string) (models.Group, error) {
	var group models.Group
	err := txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		g, err := s.groups.Create(ctx, name, founderID)
		if err != nil {
			return err
		}
		group = g
		return s.users.AddGroup(ctx, founderID, g.ID)
	})
	if err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// CreateCar inserts a car and links it into the owning group's cars array.
func (s *Service) CreateCar(ctx context.Context, car models.Car) (models.Car, error) {
	var created models.Car
	err := txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		c, err := s.cars.Create(ctx, car)
		if err != nil {
			return err
		}
		created = c
		return s.groups.AddCar(ctx, c.GroupID, c.ID)
	})
	if err != nil {
		return models.Car{}, err
	}
	return created, nil
}

// DeleteCar removes a car and its entry in the owning group's cars array.
func (s *Service) DeleteCar(ctx context.Context, car models.Car) error {
	return txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		if _, err := s.cars.Delete(ctx, car.ID); err != nil {
			return err
		}
		return s.groups.RemoveCar(ctx, car.GroupID, car.ID)
	})
}

// DeleteGroup removes a group and everything that hangs off it: its cars,
// its pending invitations, the group document itself, and finally the
// group's id in every remaining member's groups array.
func (s *Service) DeleteGroup(ctx context.Context, group models.Group) error {
	err := txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		if _, err := s.cars.DeleteByGroup(ctx, group.ID); err != nil {
			return err
		}
		if _, err := s.invitations.DeleteByGroup(ctx, group.ID); err != nil {
			return err
		}
		if _, err := s.groups.Delete(ctx, group.ID); err != nil {
			return err
		}
		return s.users.RemoveGroupFromAll(ctx, group.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("group deleted",
		zap.String("group_id", group.ID),
		zap.String("group_name", group.Name),
		zap.Int("members", len(group.Members)),
		zap.Int("cars", len(group.Cars)))
	return nil
}

// RemoveMember takes one user out of a group. Any claims the departing
// member holds on the group's cars are released first so no car stays
// marked in use by a non-member. If the departing member is the last one,
// the whole group is deleted instead; a zero-member group is never left
// behind.
func (s *Service) RemoveMember(ctx context.Context, group models.Group, userID string) error {
	if len(group.Members) == 1 && group.Members[0] == userID {
		return s.DeleteGroup(ctx, group)
	}

	err := txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		if err := s.cars.ReleaseClaimsBy(ctx, group.ID, userID); err != nil {
			return err
		}
		if err := s.groups.RemoveMember(ctx, group.ID, userID); err != nil {
			return err
		}
		return s.users.RemoveGroup(ctx, userID, group.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("member removed",
		zap.String("group_id", group.ID),
		zap.String("user_id", userID))
	return nil
}

// AddMember joins a user to a group, writing both sides of the membership
// link together.
func (s *Service) AddMember(ctx context.Context, groupID, userID string) error {
	return txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
			return err
		}
		return s.users.AddGroup(ctx, userID, groupID)
	})
}

// DeleteAccount removes a user and unwinds every group membership they
// hold. Groups where the user is the last member are deleted wholesale;
// in the rest the user just leaves. The user document goes last so a
// failure partway through leaves a smaller, still-valid account.
func (s *Service) DeleteAccount(ctx context.Context, user models.User) error {
	for _, groupID := range user.Groups {
		group, err := s.groups.GetByID(ctx, groupID)
		if err == mongo.ErrNoDocuments {
			// Dangling reference; nothing to unwind.
			continue
		}
		if err != nil {
			return err
		}
		if err := s.RemoveMember(ctx, group, user.ID); err != nil {
			return err
		}
	}

	if _, err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.log.Info("account deleted",
		zap.String("user_id", user.ID),
		zap.Int("groups", len(user.Groups)))
	return nil
}
