package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// Bill builds a short, human-presentable bill id from the last eight digits
// of the millisecond clock plus a random suffix. Collision tolerance is
// best-effort within a session; bill ids are never used as lookup keys in
// durable storage.
func Bill(at time.Time) string {
	buf := make([]byte, 2)
	suffix := "0000"
	if _, err := rand.Read(buf); err == nil {
		suffix = hex.EncodeToString(buf)
	}
	return fmt.Sprintf("BILL-%08d-%s", at.UnixMilli()%100000000, suffix)
}

// Reservation builds a RES-prefixed short id matching the public booking
// reference format shown to customers. The random suffix keeps two bookings
// created in the same millisecond from colliding.
func Reservation(at time.Time) string {
	buf := make([]byte, 2)
	suffix := "0000"
	if _, err := rand.Read(buf); err == nil {
		suffix = hex.EncodeToString(buf)
	}
	return fmt.Sprintf("RES%08d-%s", at.UnixMilli()%100000000, suffix)
}
