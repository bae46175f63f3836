// ABOUTME: Diagnostic log channel with a bounded ring and subscriber fan-out.
// ABOUTME: Records go to the process log and to any attached log surfaces.
package diag

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// ringCap bounds how many recent records the ring retains.
const ringCap = 256

// Record is one diagnostic line: a component, an action, and key=value fields.
type Record struct {
	Time      time.Time
	Component string
	Action    string
	Fields    map[string]string
}

// String renders the record in logfmt order with sorted field keys.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "component=%s action=%s", r.Component, r.Action)
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := r.Fields[k]
		if strings.ContainsAny(v, " \t\"") {
			fmt.Fprintf(&b, " %s=%q", k, v)
		} else {
			fmt.Fprintf(&b, " %s=%s", k, v)
		}
	}
	return b.String()
}

// Diagnostics collects operational records and fans them out to subscribers.
// Broadcast never blocks; a subscriber that falls behind loses records.
type Diagnostics struct {
	mu          sync.Mutex
	ring        []Record
	subscribers []chan Record
	quiet       bool
}

// New creates an empty diagnostics channel.
func New() *Diagnostics {
	return &Diagnostics{}
}

// SetQuiet disables mirroring records to the process log.
// The ring and subscriber fan-out are unaffected.
func (d *Diagnostics) SetQuiet(quiet bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quiet = quiet
}

// Record logs one diagnostic line and delivers it to subscribers.
func (d *Diagnostics) Record(component, action string, fields map[string]string) {
	rec := Record{
		Time:      time.Now().UTC(),
		Component: component,
		Action:    action,
		Fields:    fields,
	}

	d.mu.Lock()
	if !d.quiet {
		log.Printf("%s", rec.String())
	}
	d.ring = append(d.ring, rec)
	if len(d.ring) > ringCap {
		d.ring = d.ring[len(d.ring)-ringCap:]
	}
	subs := make([]chan Record, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- rec:
		default:
			// Subscriber buffer full, drop rather than block.
		}
	}
}

// Recordf logs a diagnostic line with a single formatted detail field.
func (d *Diagnostics) Recordf(component, action, format string, args ...any) {
	d.Record(component, action, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

// Subscribe returns a channel receiving future records.
func (d *Diagnostics) Subscribe() chan Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan Record, ringCap)
	d.subscribers = append(d.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (d *Diagnostics) Unsubscribe(ch chan Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, sub := range d.subscribers {
		if sub == ch {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Recent returns a copy of the retained records, oldest first.
func (d *Diagnostics) Recent() []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Record, len(d.ring))
	copy(out, d.ring)
	return out
}
