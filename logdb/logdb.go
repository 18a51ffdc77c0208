// Copyright 2026 The Detcore Authors
// This file is part of Detcore.
//
// Detcore is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Detcore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Detcore. If not, see <http://www.gnu.org/licenses/>.

// Package logdb implements a crash-consistent, append-only, log-structured
// key/value store: an in-memory ordered index backed by durable, framed
// writes with a running-hash checksum and crash-tear-tolerant recovery.
//
// A database is single-writer. All public operations are serialized by one
// mutex; Flush holds that mutex across the file write and fsync. Opening
// for writing additionally takes a cross-process advisory file lock so two
// processes can't race the same path.
package logdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/detcore/core/internal/numeric"
)

// frameMagic is the 4-byte frame header from spec.md §6.
var frameMagic = [4]byte{0xCC, 0xC4, 0xE6, 0xB0}

// Hard caps from spec.md §3/§6: a key/value at or above these sizes is
// rejected. These are never relaxed by config - config may only tighten
// them (see SPEC_FULL.md "Config").
const (
	MaxKeySize   = 4096
	MaxValueSize = 1048576
)

// Option configures a LogDB at construction time.
type Option func(*LogDB)

// WithLogger attaches a structured logger. A nil logger (the default) is
// replaced with zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(l *LogDB) { l.logger = logger }
}

// WithMetrics attaches a Prometheus instrument set. A nil *Metrics (the
// default) disables instrumentation entirely.
func WithMetrics(m *Metrics) Option {
	return func(l *LogDB) { l.metrics = m }
}

// WithSizeCaps tightens the advisory, operator-configured size caps below
// the spec.md hard caps (MaxKeySize, MaxValueSize). Values at or above the
// hard caps are clamped to the hard caps.
func WithSizeCaps(maxKey, maxValue int) Option {
	return func(l *LogDB) {
		if maxKey > 0 && maxKey < MaxKeySize {
			l.maxKeySize = maxKey
		}
		if maxValue > 0 && maxValue < MaxValueSize {
			l.maxValueSize = maxValue
		}
	}
}

// LogDB is a single, durable, append-only key/value store (spec.md §3-§7).
type LogDB struct {
	mu sync.Mutex

	path     string
	file     *os.File
	lock     *flock.Flock
	readOnly bool
	open     bool

	idx          *index
	dirty        map[string]struct{}
	hash         *runningHash
	usedBytes    uint64
	writtenBytes uint64

	maxKeySize   int
	maxValueSize int

	logger  *zap.Logger
	metrics *Metrics
}

// New constructs an unopened LogDB. Call Open before using it.
func New(opts ...Option) *LogDB {
	l := &LogDB{
		logger:       zap.NewNop(),
		maxKeySize:   MaxKeySize,
		maxValueSize: MaxValueSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// Open opens path, replaying any durable frames already on disk (Load). Any
// previously open file on this LogDB is closed (and flushed) first. If
// readOnly, the file is opened for reading only; otherwise it is opened for
// read+append, creating it if create is set, and an exclusive advisory
// cross-process lock is taken on path+".lock".
func (l *LogDB) Open(path string, create, readOnly bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.open {
		if err := l.closeLocked(); err != nil {
			return err
		}
	}

	flags := os.O_RDONLY
	if !readOnly {
		flags = os.O_RDWR
		if create {
			flags |= os.O_CREATE
		}
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return wrap(err, "logdb: open")
	}

	var fl *flock.Flock
	if !readOnly {
		fl = flock.New(path + ".lock")
		ok, lerr := fl.TryLock()
		if lerr != nil {
			f.Close()
			return wrap(lerr, "logdb: acquire lock")
		}
		if !ok {
			f.Close()
			return ErrLocked
		}
	}

	l.path = path
	l.file = f
	l.lock = fl
	l.readOnly = readOnly
	l.idx = newIndex()
	l.dirty = make(map[string]struct{})
	l.hash = newRunningHash()
	l.usedBytes = 0
	l.writtenBytes = 0
	l.open = true

	start := time.Now()
	if err := l.load(); err != nil {
		l.logger.Warn("logdb: load failed, closing", zap.String("path", path), zap.Error(err))
		_ = l.closeLocked()
		return err
	}
	l.metrics.observeLoad(time.Since(start))
	l.metrics.setUsage(l.usedBytes, l.writtenBytes)
	return nil
}

// Write sets key to value. If overwrite is false and the key already maps
// to a different value, Write fails with ErrExists. Writing the key's
// current value is a no-op that does not mark the key dirty (spec.md
// §4.1). Write is in-memory only; call Flush to make it durable.
func (l *LogDB) Write(key, value []byte, overwrite bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.open {
		return ErrClosed
	}
	if l.readOnly {
		return ErrReadOnly
	}
	if len(key) >= l.maxKeySize {
		return ErrKeyTooLarge
	}
	if len(value) >= l.maxValueSize {
		return ErrValueTooLarge
	}

	k := string(key)
	existing, ok := l.idx.get(k)
	if ok {
		if bytes.Equal(existing, value) {
			return nil
		}
		if !overwrite {
			return ErrExists
		}
		l.subUsed(len(key) + len(existing))
	}
	l.idx.set(k, value)
	l.addUsed(len(key) + len(value))
	l.dirty[k] = struct{}{}
	return nil
}

// Erase removes key. Erasing an absent key succeeds with no change
// (spec.md §4.1).
func (l *LogDB) Erase(key []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.open {
		return ErrClosed
	}
	if l.readOnly {
		return ErrReadOnly
	}

	k := string(key)
	existing, ok := l.idx.get(k)
	if !ok {
		return nil
	}
	l.idx.delete(k)
	l.subUsed(len(key) + len(existing))
	l.dirty[k] = struct{}{}
	return nil
}

// Read returns the value currently mapped to key, from the in-memory index.
func (l *LogDB) Read(key []byte) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.idx.get(string(key))
}

// Exists reports whether key is currently present.
func (l *LogDB) Exists(key []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.idx.get(string(key))
	return ok
}

// Flush durably writes every dirty key as a single frame, fsyncs, and
// clears the dirty set. A clean dirty set performs no I/O and always
// succeeds (spec.md §4.1).
func (l *LogDB) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushLocked()
}

func (l *LogDB) flushLocked() error {
	if !l.open {
		return ErrClosed
	}
	if len(l.dirty) == 0 {
		return nil
	}

	start := time.Now()

	keys := make([]string, 0, len(l.dirty))
	for k := range l.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys) // spec.md §9: ascending lexicographic reproduces the original's set order

	tentative, err := l.hash.clone()
	if err != nil {
		return wrap(err, "logdb: start flush frame")
	}

	var buf bytes.Buffer
	buf.Write(frameMagic[:])

	var written int
	var lenBuf [4]byte
	for _, k := range keys {
		keyBytes := []byte(k)
		value, present := l.idx.get(k)
		if present {
			buf.WriteByte(1)
			tentative.write([]byte{1})

			buf.Write(encodeVarint(nil, uint64(len(keyBytes))))
			buf.Write(keyBytes)
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(keyBytes)))
			tentative.write(lenBuf[:])
			tentative.write(keyBytes)

			buf.Write(encodeVarint(nil, uint64(len(value))))
			buf.Write(value)
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(value)))
			tentative.write(lenBuf[:])
			tentative.write(value)

			written += len(keyBytes) + len(value)
		} else {
			buf.WriteByte(2)
			tentative.write([]byte{2})

			buf.Write(encodeVarint(nil, uint64(len(keyBytes))))
			buf.Write(keyBytes)
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(keyBytes)))
			tentative.write(lenBuf[:])
			tentative.write(keyBytes)

			written += len(keyBytes)
		}
	}
	buf.WriteByte(0)
	tentative.write([]byte{0})

	checksum, err := tentative.sum8()
	if err != nil {
		return wrap(err, "logdb: finalize flush checksum")
	}
	buf.Write(checksum[:])

	if _, err := l.file.Write(buf.Bytes()); err != nil {
		return wrap(err, "logdb: write frame")
	}
	if err := l.file.Sync(); err != nil {
		return wrap(err, "logdb: fsync")
	}

	l.hash = tentative
	l.dirty = make(map[string]struct{})
	if wb, overflow := numeric.SafeAdd(l.writtenBytes, uint64(written)); !overflow {
		l.writtenBytes = wb
	}

	l.metrics.observeFlush(time.Since(start))
	l.metrics.setUsage(l.usedBytes, l.writtenBytes)
	l.logger.Debug("logdb: flush",
		zap.Int("records", len(keys)),
		zap.Int("bytes", buf.Len()),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Close flushes pending changes and releases the file handle (and advisory
// lock, if held). Close on an already-closed LogDB is a no-op.
func (l *LogDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *LogDB) closeLocked() error {
	if !l.open {
		return nil
	}
	ferr := l.flushLocked()
	cerr := l.file.Close()
	if l.lock != nil {
		_ = l.lock.Unlock()
		_ = os.Remove(l.lock.Path())
	}
	l.open = false
	l.file = nil
	l.lock = nil
	if ferr != nil {
		return ferr
	}
	return wrap(cerr, "logdb: close")
}

// IsDirty reports whether any key's in-memory state differs from the last
// durably flushed state.
func (l *LogDB) IsDirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.dirty) > 0
}

// IsOpen reports whether the database currently holds an open file handle.
func (l *LogDB) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// IsReadOnly reports whether the database was opened read-only.
func (l *LogDB) IsReadOnly() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readOnly
}

// Iterate returns a lazy, in-order walk over a point-in-time snapshot of
// the index (spec.md §4.1: "Not restartable after a mutation during
// iteration (implementations may snapshot)"). It has the shape of a Go 1.23
// iter.Seq2[[]byte, []byte] so callers can range over it directly.
func (l *LogDB) Iterate() func(yield func(key, value []byte) bool) {
	l.mu.Lock()
	snap := l.idx.snapshot()
	l.mu.Unlock()

	return func(yield func(key, value []byte) bool) {
		snap.ascend(func(k string, v []byte) bool {
			return yield([]byte(k), v)
		})
	}
}

func (l *LogDB) addUsed(n int) {
	if sum, overflow := numeric.SafeAdd(l.usedBytes, uint64(n)); !overflow {
		l.usedBytes = sum
	}
}

func (l *LogDB) subUsed(n int) {
	if diff, underflow := numeric.SafeSub(l.usedBytes, uint64(n)); !underflow {
		l.usedBytes = diff
	} else {
		l.usedBytes = 0
	}
}

// isShortRead reports whether err indicates the stream ran out of bytes
// mid-read - the signal for a torn (crash-truncated) trailing frame, as
// opposed to a genuine I/O error or a validation failure.
func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// load replays every frame from the file's current position until EOF,
// applying each verified frame to the index (spec.md §4.1). It is called
// exactly once per Open, from a freshly-initialized state.
func (l *LogDB) load() error {
	for {
		applied, err := l.readOneFrame()
		if err != nil {
			l.metrics.observeRejectedFrame()
			return err
		}
		if !applied {
			return nil
		}
	}
}

type loadedRecord struct {
	mode  byte
	key   []byte
	value []byte
}

// readOneFrame reads and, if valid, applies a single frame. It returns
// (true, nil) on success, (false, nil) on a clean stop (EOF at a frame
// boundary, or a torn/truncated trailing frame - both are tolerated and
// silently discarded per spec.md §4.1 "crash-tear policy"), and (false, err)
// on a hard corruption or I/O failure.
func (l *LogDB) readOneFrame() (bool, error) {
	var b0 [1]byte
	if _, err := io.ReadFull(l.file, b0[:]); err != nil {
		if isShortRead(err) {
			return false, nil
		}
		return false, wrap(err, "logdb: read magic")
	}
	if b0[0] != frameMagic[0] {
		return false, ErrCorrupt
	}

	var rest [3]byte
	if _, err := io.ReadFull(l.file, rest[:]); err != nil {
		if isShortRead(err) {
			return false, nil
		}
		return false, wrap(err, "logdb: read magic")
	}
	if rest[0] != frameMagic[1] || rest[1] != frameMagic[2] || rest[2] != frameMagic[3] {
		return false, ErrCorrupt
	}

	tentative, err := l.hash.clone()
	if err != nil {
		return false, wrap(err, "logdb: fork running hash")
	}

	var records []loadedRecord
	for {
		var mb [1]byte
		if _, err := io.ReadFull(l.file, mb[:]); err != nil {
			if isShortRead(err) {
				return false, nil
			}
			return false, wrap(err, "logdb: read record mode")
		}
		mode := mb[0]
		if mode > 2 {
			return false, ErrCorrupt
		}
		tentative.write(mb[:])
		if mode == 0 {
			break
		}

		kl, err := decodeVarint(l.file)
		if err != nil {
			if isShortRead(err) {
				return false, nil
			}
			return false, wrap(err, "logdb: read key length")
		}
		if kl >= MaxKeySize {
			return false, ErrCorrupt
		}
		key := make([]byte, kl)
		if _, err := io.ReadFull(l.file, key); err != nil {
			if isShortRead(err) {
				return false, nil
			}
			return false, wrap(err, "logdb: read key")
		}
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(kl))
		tentative.write(lenBuf[:])
		tentative.write(key)

		rec := loadedRecord{mode: mode, key: key}
		if mode == 1 {
			vl, err := decodeVarint(l.file)
			if err != nil {
				if isShortRead(err) {
					return false, nil
				}
				return false, wrap(err, "logdb: read value length")
			}
			if vl >= MaxValueSize {
				return false, ErrCorrupt
			}
			value := make([]byte, vl)
			if _, err := io.ReadFull(l.file, value); err != nil {
				if isShortRead(err) {
					return false, nil
				}
				return false, wrap(err, "logdb: read value")
			}
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(vl))
			tentative.write(lenBuf[:])
			tentative.write(value)
			rec.value = value
		}
		records = append(records, rec)
	}

	var checksum [8]byte
	if _, err := io.ReadFull(l.file, checksum[:]); err != nil {
		if isShortRead(err) {
			return false, nil
		}
		return false, wrap(err, "logdb: read checksum")
	}

	want, err := tentative.sum8()
	if err != nil {
		return false, wrap(err, "logdb: finalize load checksum")
	}
	if checksum != want {
		return false, ErrCorrupt
	}

	l.hash = tentative
	for _, rec := range records {
		switch rec.mode {
		case 1:
			l.applyLoaded(rec.key, rec.value)
		case 2:
			l.applyErasedLoaded(rec.key)
		}
		if n, overflow := numeric.SafeAdd(l.writtenBytes, uint64(len(rec.key)+len(rec.value))); !overflow {
			l.writtenBytes = n
		}
	}
	l.logger.Debug("logdb: applied frame", zap.Int("records", len(records)))
	return true, nil
}

// applyLoaded installs a replayed upsert. It mirrors Write but never marks
// the key dirty (it is already durable) - spec.md §4.1 step 5 "apply each
// record to the in-memory index ... neither marks dirty".
func (l *LogDB) applyLoaded(key, value []byte) {
	k := string(key)
	if existing, ok := l.idx.get(k); ok {
		l.subUsed(len(key) + len(existing))
	}
	l.idx.set(k, value)
	l.addUsed(len(key) + len(value))
}

func (l *LogDB) applyErasedLoaded(key []byte) {
	k := string(key)
	if existing, ok := l.idx.get(k); ok {
		l.idx.delete(k)
		l.subUsed(len(key) + len(existing))
	}
}
