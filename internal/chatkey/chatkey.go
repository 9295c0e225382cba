// Package chatkey derives the canonical key that groups all messages about
// one listing between one unordered pair of users into a single conversation.
package chatkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalid = errors.New("invalid conversation key input")

const sep = ":"

// Derive returns the conversation key for a listing and a pair of users.
// It is symmetric in (userA, userB): both participants derive the same key
// no matter who is sending.
func Derive(listingID uint64, userA, userB string) (string, error) {
	if listingID == 0 {
		return "", fmt.Errorf("%w: listing id is required", ErrInvalid)
	}
	if userA == "" || userB == "" {
		return "", fmt.Errorf("%w: both user ids are required", ErrInvalid)
	}
	if strings.Contains(userA, sep) || strings.Contains(userB, sep) {
		return "", fmt.Errorf("%w: user id contains reserved separator", ErrInvalid)
	}
	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	return strconv.FormatUint(listingID, 10) + sep + lo + sep + hi, nil
}

// Parse splits a key back into its components. A key round-trips: re-deriving
// from the parsed parts yields the identical string. Parse is a format check
// only; authorization must always be re-checked against stored messages.
func Parse(key string) (listingID uint64, userLo, userHi string, err error) {
	parts := strings.SplitN(key, sep, 3)
	if len(parts) != 3 {
		return 0, "", "", fmt.Errorf("%w: malformed key", ErrInvalid)
	}
	listingID, perr := strconv.ParseUint(parts[0], 10, 64)
	if perr != nil || listingID == 0 {
		return 0, "", "", fmt.Errorf("%w: malformed listing id", ErrInvalid)
	}
	userLo, userHi = parts[1], parts[2]
	if userLo == "" || userHi == "" || userLo > userHi || strings.Contains(userHi, sep) {
		return 0, "", "", fmt.Errorf("%w: malformed user ids", ErrInvalid)
	}
	return listingID, userLo, userHi, nil
}

// Mentions reports whether uid is one of the two users embedded in the key.
// It does not prove the user is a participant of any stored conversation.
func Mentions(key, uid string) bool {
	_, lo, hi, err := Parse(key)
	if err != nil {
		return false
	}
	return uid == lo || uid == hi
}
