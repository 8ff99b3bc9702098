package world

// lightEntry is a pending increase: light l wants to reach pos.
type lightEntry struct {
	pos   Vec3
	light Light
}

// increaseQueue is a bucket queue keyed by level. pop always returns one of
// the brightest entries, so no cell is written with a value that a later
// entry would beat.
type increaseQueue struct {
	buckets [MaxLight + 1][]lightEntry
	top     int
	n       int
}

func (q *increaseQueue) push(pos Vec3, l Light) {
	lvl := int(l.Level())
	if lvl == 0 {
		return
	}
	q.buckets[lvl] = append(q.buckets[lvl], lightEntry{pos, l})
	if lvl > q.top {
		q.top = lvl
	}
	q.n++
}

func (q *increaseQueue) pop() (lightEntry, bool) {
	for q.top > 0 && len(q.buckets[q.top]) == 0 {
		q.top--
	}
	if q.top == 0 {
		return lightEntry{}, false
	}
	b := q.buckets[q.top]
	e := b[len(b)-1]
	q.buckets[q.top] = b[:len(b)-1]
	q.n--
	return e, true
}

func (q *increaseQueue) len() int {
	return q.n
}

// decreaseEntry asks to retract the light at pos. If filtered, the cell is
// only cleared when its source equals filter, i.e. when it was lit by the
// cell that was just cleared.
type decreaseEntry struct {
	pos      Vec3
	filter   Source
	filtered bool
}

type decreaseQueue struct {
	buckets [MaxLight + 1][]decreaseEntry
	top     int
	n       int
}

// push files e under level, the light of the cell that caused it.
func (q *decreaseQueue) push(e decreaseEntry, level uint8) {
	lvl := int(level)
	if lvl > MaxLight {
		lvl = MaxLight
	}
	q.buckets[lvl] = append(q.buckets[lvl], e)
	if lvl > q.top {
		q.top = lvl
	}
	q.n++
}

func (q *decreaseQueue) pop() (decreaseEntry, bool) {
	for q.top > 0 && len(q.buckets[q.top]) == 0 {
		q.top--
	}
	b := q.buckets[q.top]
	if len(b) == 0 {
		return decreaseEntry{}, false
	}
	e := b[len(b)-1]
	q.buckets[q.top] = b[:len(b)-1]
	q.n--
	return e, true
}

func (q *decreaseQueue) len() int {
	return q.n
}
