package outwriter

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/huangsam/contacts/schema"
)

// AvatarURL returns the contact's avatar, or a stable placeholder portrait
// picked from its id (or the first letter of its name when the id is empty).
func AvatarURL(c schema.Contact) string {
	if c.Avatar != "" {
		return c.Avatar
	}
	n := avatarSeed(c)
	gender := "women"
	if n%2 == 0 {
		gender = "men"
	}
	return fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", gender, n%99+1)
}

// avatarSeed maps numeric ids to themselves so json-server ids keep their
// usual portraits. Other ids are hashed.
func avatarSeed(c schema.Contact) uint64 {
	if c.ID == "" {
		if c.Name == "" {
			return 1
		}
		return uint64([]rune(c.Name)[0])
	}
	if n, err := strconv.ParseUint(c.ID, 10, 64); err == nil {
		return n
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(c.ID))
	return uint64(h.Sum32())
}
