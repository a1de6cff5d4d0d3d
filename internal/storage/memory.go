package storage

import "bizcontrol/internal/retail"

// MemoryStore keeps the serialized snapshot in memory. Used in tests and
// for throwaway runs.
type MemoryStore struct {
	data []byte
	// FailSave, when set, makes Save return the given error. Lets tests
	// exercise the commit-on-save contract.
	FailSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*retail.Snapshot, error) {
	if m.data == nil {
		return nil, nil
	}
	return decodeSnapshot(m.data)
}

func (m *MemoryStore) Save(s *retail.Snapshot) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	data, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}
