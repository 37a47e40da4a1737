package reader

import (
	"os/user"
	"strconv"
	"sync"
)

// userNames caches uid to login name lookups. Uids outlive the processes
// that carry them, so the cache is shared between enumerations.
type userNames struct {
	sync.RWMutex
	names map[uint32]string
}

var users = &userNames{names: map[uint32]string{}}

// name returns the login name for uid, or the uid itself when it has no
// passwd entry.
func (u *userNames) name(uid uint32) string {
	u.RLock()
	name, ok := u.names[uid]
	u.RUnlock()
	if ok {
		return name
	}

	id := strconv.FormatUint(uint64(uid), 10)
	name = id
	if usr, err := user.LookupId(id); err == nil {
		name = usr.Username
	}
	u.Lock()
	u.names[uid] = name
	u.Unlock()
	return name
}
