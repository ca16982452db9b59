package sdk

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"
)

const pushChars = "-0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// PushIDs generates chronologically ordered, collision resistant keys
type PushIDs struct {
	mu       sync.Mutex
	lastTime int64
	lastRand [12]int
	now      func() time.Time
}

// NewPushIDs creates push key generator
func NewPushIDs() *PushIDs {
	return &PushIDs{now: time.Now}
}

// Next returns next key
func (p *PushIDs) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now().UnixMilli()
	duplicate := now == p.lastTime
	p.lastTime = now

	var id [20]byte
	for i := 7; i >= 0; i-- {
		id[i] = pushChars[now%64]
		now /= 64
	}
	if !duplicate {
		for i := range p.lastRand {
			n, err := rand.Int(rand.Reader, big.NewInt(64))
			if err != nil {
				p.lastRand[i] = i
				continue
			}
			p.lastRand[i] = int(n.Int64())
		}
	} else {
		i := len(p.lastRand) - 1
		for ; i >= 0 && p.lastRand[i] == 63; i-- {
			p.lastRand[i] = 0
		}
		if i >= 0 {
			p.lastRand[i]++
		}
	}
	for i, r := range p.lastRand {
		id[8+i] = pushChars[r]
	}
	return string(id[:])
}
