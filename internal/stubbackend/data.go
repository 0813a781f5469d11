package stubbackend

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/studygroup-client/models"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered backend user.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Bio          string
	DateJoined   time.Time
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

type group struct {
	models.Group
	ownerID int64
	members map[int64]bool
}

type memoryData struct {
	lock     sync.RWMutex
	nextID   int64
	users    map[int64]*User
	groups   map[int64]*group
	sessions map[int64]*models.Session
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:    make(map[int64]*User),
		groups:   make(map[int64]*group),
		sessions: make(map[int64]*models.Session),
	}
}

func (d *memoryData) newID() int64 {
	d.nextID++
	return d.nextID
}

// user returns a copy of the user so callers never read a record that updateUser is changing.
func (d *memoryData) user(id int64) (User, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

func (d *memoryData) userByUsername(username string) (User, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Username, username) {
			return *u, true
		}
	}
	return User{}, false
}

// addUser stores a copy of u and fills in its id. It returns field errors when the username
// or email is taken.
func (d *memoryData) addUser(u *User) map[string][]string {
	d.lock.Lock()
	defer d.lock.Unlock()
	fields := map[string][]string{}
	for _, existing := range d.users {
		if strings.EqualFold(existing.Username, u.Username) {
			fields["username"] = []string{"A user with that username already exists."}
		}
		if strings.EqualFold(existing.Email, u.Email) {
			fields["email"] = []string{"A user with that email already exists."}
		}
	}
	if len(fields) > 0 {
		return fields
	}
	u.ID = d.newID()
	u.DateJoined = NowTimeFunc()
	stored := *u
	d.users[u.ID] = &stored
	return nil
}

func (d *memoryData) updateUser(id int64, update func(u *User)) (User, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	u, ok := d.users[id]
	if !ok {
		return User{}, false
	}
	update(u)
	return *u, true
}

// groupView renders the group as the requesting user sees it.
func (d *memoryData) groupView(g *group) models.Group {
	out := g.Group
	out.Participants = len(g.members)
	if owner, ok := d.users[g.ownerID]; ok {
		out.Owner = owner.Username
	}
	return out
}

func (d *memoryData) listGroups(keep func(g *group) bool) []models.Group {
	d.lock.RLock()
	defer d.lock.RUnlock()
	out := []models.Group{}
	for _, g := range d.groups {
		if keep(g) {
			out = append(out, d.groupView(g))
		}
	}
	slices.SortFunc(out, func(a, b models.Group) int { return int(a.ID - b.ID) })
	return out
}

func (d *memoryData) addGroup(ownerID int64, in models.NewGroup) models.Group {
	d.lock.Lock()
	defer d.lock.Unlock()
	g := &group{
		Group: models.Group{
			ID:          d.newID(),
			Name:        in.Name,
			Description: in.Description,
			Color:       in.Color,
			CreatedAt:   NowTimeFunc().UTC(),
		},
		ownerID: ownerID,
		members: map[int64]bool{ownerID: true},
	}
	d.groups[g.ID] = g
	return d.groupView(g)
}

// membership applies join (true) or leave (false). It returns the group, whether it exists and
// a conflict message when the membership is already in the requested state.
func (d *memoryData) membership(groupID, userID int64, join bool) (models.Group, bool, string) {
	d.lock.Lock()
	defer d.lock.Unlock()
	g, ok := d.groups[groupID]
	if !ok {
		return models.Group{}, false, ""
	}
	switch {
	case join && g.members[userID]:
		return d.groupView(g), true, "You are already a member of this group."
	case !join && !g.members[userID]:
		return d.groupView(g), true, "You are not a member of this group."
	case !join && g.ownerID == userID:
		return d.groupView(g), true, "The group owner cannot leave the group."
	}
	if join {
		g.members[userID] = true
	} else {
		delete(g.members, userID)
	}
	return d.groupView(g), true, ""
}

func (d *memoryData) isMember(groupID, userID int64) (member, exists bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	g, ok := d.groups[groupID]
	if !ok {
		return false, false
	}
	return g.members[userID], true
}

func (d *memoryData) isOwner(groupID, userID int64) bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	g, ok := d.groups[groupID]
	return ok && g.ownerID == userID
}

func (d *memoryData) listSessions(userID int64, filter models.SessionFilter) []models.Session {
	d.lock.RLock()
	defer d.lock.RUnlock()
	out := []models.Session{}
	for _, s := range d.sessions {
		g, ok := d.groups[s.GroupID]
		if !ok || !g.members[userID] {
			continue
		}
		if filter.GroupID != 0 && s.GroupID != filter.GroupID {
			continue
		}
		if filter.Date != "" && s.Date != filter.Date {
			continue
		}
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b models.Session) int {
		if c := strings.Compare(a.Date+a.Time, b.Date+b.Time); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out
}

func (d *memoryData) session(id int64) (models.Session, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	s, ok := d.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	return *s, true
}

func (d *memoryData) addSession(creator string, in models.NewSession) models.Session {
	d.lock.Lock()
	defer d.lock.Unlock()
	s := &models.Session{
		ID:          d.newID(),
		GroupID:     in.GroupID,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		CreatedBy:   creator,
		CreatedAt:   NowTimeFunc().UTC(),
	}
	d.sessions[s.ID] = s
	return *s
}

func (d *memoryData) deleteSession(id int64) {
	d.lock.Lock()
	delete(d.sessions, id)
	d.lock.Unlock()
}
