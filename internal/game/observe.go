package game

// observers is a set of latest-value channels. Callers hold Session.mu.
type observers struct {
	next int
	subs map[int]chan Snapshot
}

func (o *observers) add() (chan Snapshot, int) {
	if o.subs == nil {
		o.subs = make(map[int]chan Snapshot)
	}
	id := o.next
	o.next++
	ch := make(chan Snapshot, 1)
	o.subs[id] = ch
	return ch, id
}

func (o *observers) remove(id int) {
	if ch, ok := o.subs[id]; ok {
		delete(o.subs, id)
		close(ch)
	}
}

// publish never blocks: a pending unread snapshot is replaced.
func (o *observers) publish(s Snapshot) {
	for _, ch := range o.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (o *observers) closeAll() {
	for id := range o.subs {
		o.remove(id)
	}
}
