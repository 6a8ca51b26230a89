package fakeapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var errNotFound = errors.New("not found")

// memStore is the stub's database. Every method takes the lock itself.
type memStore struct {
	mu sync.RWMutex

	users        map[int64]*user
	usersByPhone map[string]*user
	complaints   []*complaint
	byPublicID   map[string]*complaint
	activities   []*activity
	otps         map[string]*otp

	nextUserID      int64
	nextComplaintID int64
	nextActivityID  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:        map[int64]*user{},
		usersByPhone: map[string]*user{},
		byPublicID:   map[string]*complaint{},
		otps:         map[string]*otp{},
	}
}

func (s *memStore) addUser(u user) *user {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(u)
}

func (s *memStore) addUserLocked(u user) *user {
	s.nextUserID++
	u.ID = s.nextUserID
	stored := &u
	s.users[u.ID] = stored
	s.usersByPhone[u.PhoneNumber] = stored
	return stored
}

func (s *memStore) userByID(id int64) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return user{}, false
	}
	return *u, true
}

func (s *memStore) userByPhone(phone string) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByPhone[phone]
	if !ok {
		return user{}, false
	}
	return *u, true
}

// newComplaintID follows the backend format: CF, the year, then 10 upper-case hex characters.
func newComplaintID(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("CF%d%s", now.Year(), strings.ToUpper(hex[:10]))
}

// createComplaint stores c, registering the victim as a user if the phone is new.
func (s *memStore) createComplaint(c complaint, now time.Time) complaint {
	s.mu.Lock()
	defer s.mu.Unlock()

	victim, ok := s.usersByPhone[c.VictimPhone]
	if !ok {
		victim = s.addUserLocked(user{PhoneNumber: c.VictimPhone, Role: "victim", FullName: c.VictimName})
	}

	s.nextComplaintID++
	c.ID = s.nextComplaintID
	c.ComplaintID = newComplaintID(now)
	c.VictimID = victim.ID
	c.CreatedAt = now
	stored := &c
	s.complaints = append(s.complaints, stored)
	s.byPublicID[c.ComplaintID] = stored
	return c
}

func (s *memStore) complaint(complaintID string) (complaint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byPublicID[complaintID]
	if !ok {
		return complaint{}, false
	}
	return *c, true
}

// updateComplaint applies fn to the stored complaint under the write lock.
func (s *memStore) updateComplaint(complaintID string, fn func(c *complaint) error) (complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byPublicID[complaintID]
	if !ok {
		return complaint{}, errNotFound
	}
	if err := fn(c); err != nil {
		return complaint{}, err
	}
	return *c, nil
}

// filterComplaints returns matching complaints in creation order.
func (s *memStore) filterComplaints(match func(c *complaint) bool) []complaint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []complaint
	for _, c := range s.complaints {
		if match(c) {
			out = append(out, *c)
		}
	}
	return out
}

func (s *memStore) addActivity(a activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextActivityID++
	a.ID = s.nextActivityID
	s.activities = append(s.activities, &a)
}

// activitiesFor returns the log of one complaint, newest first.
func (s *memStore) activitiesFor(complaintID int64) []activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []activity
	for _, a := range s.activities {
		if a.ComplaintID == complaintID {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func otpKey(phone, complaintID string) string { return phone + "|" + complaintID }

func (s *memStore) putOTP(phone, complaintID string, o otp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[otpKey(phone, complaintID)] = &o
}

// consumeOTP marks a matching, unexpired code as used. A code can be consumed once.
func (s *memStore) consumeOTP(phone, complaintID, code string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.otps[otpKey(phone, complaintID)]
	if !ok || o.Used || o.Code != code || !now.Before(o.ExpiresAt) {
		return false
	}
	o.Used = true
	return true
}

func (s *memStore) lastOTP(phone, complaintID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.otps[otpKey(phone, complaintID)]; ok {
		return o.Code
	}
	return ""
}
