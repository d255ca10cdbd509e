package server

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"pacman/internal/logging"
)

// Default credentials used when no users file is configured.
const (
	DefaultUserName     = "labas"
	DefaultUserPassword = "rytas"
)

// User is one entry of the users file.
type User struct {
	Name     string
	Password string
}

// DefaultUsers is the user list when no users file is given.
func DefaultUsers() []User {
	return []User{{Name: DefaultUserName, Password: DefaultUserPassword}}
}

// ParseUsers reads "name password" pairs, one per line. Blank lines are
// ignored; any other line without exactly two fields is skipped with a
// warning naming its 1-based line number.
func ParseUsers(r io.Reader) ([]User, error) {
	var users []User
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			logging.UsersWarn("bad config line %d, skipping", line)
			continue
		}
		users = append(users, User{Name: fields[0], Password: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// LoadUsers reads the users file at path from fs.
func LoadUsers(fs afero.Fs, path string) ([]User, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open users file: %w", err)
	}
	defer f.Close()

	users, err := ParseUsers(f)
	if err != nil {
		return nil, err
	}
	logging.Users("loaded %d users from %s", len(users), path)
	return users, nil
}

// Directory is the live set of known users. It is safe for concurrent use.
type Directory struct {
	mu    sync.RWMutex
	users []User
}

// NewDirectory creates a directory holding users.
func NewDirectory(users []User) *Directory {
	d := &Directory{}
	d.Replace(users)
	return d
}

// Replace swaps in a new user list.
func (d *Directory) Replace(users []User) {
	list := make([]User, len(users))
	copy(list, users)

	d.mu.Lock()
	d.users = list
	d.mu.Unlock()
}

// Check reports whether name and password match a known user.
func (d *Directory) Check(name, password string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Name == name && u.Password == password {
			return true
		}
	}
	return false
}

// Has reports whether a user with this name exists.
func (d *Directory) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of known users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
