package dummydb

import (
	"sync"

	"github.com/tkabila/chekechea/core/attendance"
	"github.com/tkabila/chekechea/core/billing"
	"github.com/tkabila/chekechea/core/child"
)

// DB is an in-memory store used by tests and local experiments. It honors the
// same uniqueness guarantees as the SQL store.
type (
	DB struct {
		child      *childTable
		attendance *attendanceTable
		invoice    *invoiceTable
	}

	childTable struct {
		t     map[string]*child.Child
		mutex sync.RWMutex
	}

	attendanceTable struct {
		t     map[string]*attendance.Record
		mutex sync.RWMutex
	}

	invoiceTable struct {
		t     map[string]*billing.Invoice
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		child:      &childTable{t: make(map[string]*child.Child)},
		attendance: &attendanceTable{t: make(map[string]*attendance.Record)},
		invoice:    &invoiceTable{t: make(map[string]*billing.Invoice)},
	}
	return db, nil
}

// Reset drops all rows; handy between test cases sharing one store.
func (db *DB) Reset() {
	db.child.mutex.Lock()
	db.child.t = make(map[string]*child.Child)
	db.child.mutex.Unlock()

	db.attendance.mutex.Lock()
	db.attendance.t = make(map[string]*attendance.Record)
	db.attendance.mutex.Unlock()

	db.invoice.mutex.Lock()
	db.invoice.t = make(map[string]*billing.Invoice)
	db.invoice.mutex.Unlock()
}

func (db *DB) childSummary(id string) *child.Summary {
	if ch, ok := db.child.t[id]; ok {
		summary := ch.Summary()
		return &summary
	}
	return nil
}
