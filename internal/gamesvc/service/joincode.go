package service

import "math/rand"

// Join codes skip 0/O/1/I so they survive being read out loud and typed on
// a phone.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLength = 6

func NewJoinCode() string {
	b := make([]byte, joinCodeLength)
	for i := range b {
		b[i] = joinCodeAlphabet[rand.Intn(len(joinCodeAlphabet))]
	}
	return string(b)
}
