package types

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mitchellh/hashstructure"
)

// Set keeps insertion order and dedups items by their structural hash
type Set[T any] struct {
	hash    map[uint64]int
	storage []T
}

func NewSet[T any](values ...T) *Set[T] {
	set := &Set[T]{
		hash:    make(map[uint64]int),
		storage: []T{},
	}
	set.Insert(values...)
	return set
}

func (st *Set[T]) Hash(elem T) uint64 {
	hash, err := hashstructure.Hash(elem, nil)
	if err != nil {
		panic(fmt.Sprintf("failed to hash set element: %s", err))
	}
	return hash
}

func (st *Set[T]) Insert(values ...T) {
	for _, elem := range values {
		hash := st.Hash(elem)
		if _, found := st.hash[hash]; !found {
			st.hash[hash] = len(st.storage)
			st.storage = append(st.storage, elem)
		}
	}
}

func (st *Set[T]) Exists(elem T) bool {
	if st == nil {
		return false
	}
	_, found := st.hash[st.Hash(elem)]
	return found
}

func (st *Set[T]) Len() int {
	if st == nil {
		return 0
	}
	return len(st.storage)
}

func (st *Set[T]) Array() []T {
	if st == nil {
		return nil
	}
	return append([]T{}, st.storage...)
}

func (st *Set[T]) String() string {
	parts := make([]string, 0, st.Len())
	for _, elem := range st.storage {
		parts = append(parts, fmt.Sprintf("%v", elem))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (st *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.Array())
}

func (st *Set[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*st = *NewSet(values...)
	return nil
}
