package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/auralab/auralab/internal/domain"
)

// Memory is a mutex-guarded in-memory DataContext. It backs tests and the
// local run mode; copies go in and out so callers never alias stored state.
type Memory struct {
	mu           sync.RWMutex
	users        map[primitive.ObjectID]domain.User
	rooms        map[primitive.ObjectID]domain.Room
	measurements map[primitive.ObjectID]domain.Measurement
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[primitive.ObjectID]domain.User),
		rooms:        make(map[primitive.ObjectID]domain.Room),
		measurements: make(map[primitive.ObjectID]domain.Measurement),
	}
}

// Context exposes the Memory store as a DataContext.
func (m *Memory) Context() DataContext {
	return DataContext{
		Users:        memUsers{m},
		Rooms:        memRooms{m},
		Measurements: memMeasurements{m},
	}
}

type memUsers struct{ m *Memory }

func (r memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	cp := u
	cp.Rooms = append([]string(nil), u.Rooms...)
	cp.Measurements = append([]string(nil), u.Measurements...)
	return &cp, nil
}

func (r memUsers) Save(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *user
	cp.Rooms = append([]string(nil), user.Rooms...)
	cp.Measurements = append([]string(nil), user.Measurements...)
	r.m.users[user.ID] = cp
	return nil
}

func (r memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.users, id)
	return nil
}

type memRooms struct{ m *Memory }

func (r memRooms) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Room, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	room, ok := r.m.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := room
	return &cp, nil
}

func (r memRooms) Save(_ context.Context, room *domain.Room) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.rooms[room.ID] = *room
	return nil
}

type memMeasurements struct{ m *Memory }

func (r memMeasurements) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Measurement, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	meas, ok := r.m.measurements[id]
	if !ok {
		return nil, nil
	}
	cp := meas
	return &cp, nil
}

func (r memMeasurements) Save(_ context.Context, meas *domain.Measurement) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.measurements[meas.ID] = *meas
	return nil
}
