package memory

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type usersRepo struct {
	v view
}

func (r usersRepo) Create(_ context.Context, u user.User) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.users {
			if existing.Username == u.Username {
				return user.ErrUsernameTaken
			}
			if existing.Email == u.Email {
				return user.ErrEmailTaken
			}
		}
		st.users[u.ID] = u
		return nil
	})
}

func (r usersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	var out user.User
	err := r.v.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return user.ErrNotFound
		}
		out = u
		return nil
	})
	return out, err
}

func (r usersRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r usersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r usersRepo) find(match func(user.User) bool) (user.User, error) {
	var out user.User
	err := r.v.read(func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				out = u
				return nil
			}
		}
		return user.ErrNotFound
	})
	return out, err
}

func (r usersRepo) GetMany(_ context.Context, ids []int64) (map[int64]user.User, error) {
	out := make(map[int64]user.User, len(ids))
	err := r.v.read(func(st *state) error {
		for _, id := range ids {
			if u, ok := st.users[id]; ok {
				out[id] = u
			}
		}
		return nil
	})
	return out, err
}

// Delete removes the user's memberships and unassigns their tasks.
func (r usersRepo) Delete(_ context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return user.ErrNotFound
		}
		delete(st.users, id)

		for mid, m := range st.memberships {
			if m.UserID == id {
				delete(st.memberships, mid)
			}
		}
		for tid, t := range st.tasks {
			if t.AssignedToID != nil && *t.AssignedToID == id {
				t.AssignedToID = nil
				st.tasks[tid] = t
			}
		}
		return nil
	})
}
