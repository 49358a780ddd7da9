package symbols

import "hash/fnv"

// Persistent Hash Array Mapped Trie (HAMT) keyed by binding name.
// Put never mutates a node reachable from an older map, so every
// Environment derived from a common ancestor stays valid.

const (
	hamtBits = 5
	hamtSize = 1 << hamtBits // 32
	hamtMask = hamtSize - 1
)

// persistentMap is an immutable name -> Binding map
type persistentMap struct {
	root  *hamtNode
	count int
}

type hamtNode struct {
	bitmap uint32        // which indices are populated
	nodes  []interface{} // hamtEntry or *hamtNode
}

type hamtEntry struct {
	hash  uint32
	key   string
	value Binding
}

func emptyMap() *persistentMap {
	return &persistentMap{}
}

func (m *persistentMap) Len() int {
	return m.count
}

// Get returns the binding for a name.
func (m *persistentMap) Get(key string) (Binding, bool) {
	if m.root == nil {
		return Binding{}, false
	}
	return m.root.get(hashString(key), key, 0)
}

// Put returns a new map with the binding added or replaced.
func (m *persistentMap) Put(key string, value Binding) *persistentMap {
	hash := hashString(key)

	root := m.root
	if root == nil {
		root = &hamtNode{}
	}
	newRoot, added := root.put(hash, key, value, 0)

	newCount := m.count
	if added {
		newCount++
	}
	return &persistentMap{root: newRoot, count: newCount}
}

func (n *hamtNode) get(hash uint32, key string, shift uint) (Binding, bool) {
	if shift >= 32 {
		// Collision bucket search
		for _, node := range n.nodes {
			if entry, ok := node.(hamtEntry); ok && entry.key == key {
				return entry.value, true
			}
		}
		return Binding{}, false
	}

	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx
	if n.bitmap&bit == 0 {
		return Binding{}, false
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch v := n.nodes[pos].(type) {
	case hamtEntry:
		if v.hash == hash && v.key == key {
			return v.value, true
		}
		return Binding{}, false
	case *hamtNode:
		return v.get(hash, key, shift+hamtBits)
	}
	return Binding{}, false
}

func (n *hamtNode) put(hash uint32, key string, value Binding, shift uint) (*hamtNode, bool) {
	newNode := &hamtNode{
		bitmap: n.bitmap,
		nodes:  make([]interface{}, len(n.nodes)),
	}
	copy(newNode.nodes, n.nodes)

	if shift >= 32 {
		// Hash bits exhausted: the node is a collision bucket.
		for i, node := range newNode.nodes {
			if entry, ok := node.(hamtEntry); ok && entry.key == key {
				newNode.nodes[i] = hamtEntry{hash: hash, key: key, value: value}
				return newNode, false
			}
		}
		newNode.nodes = append(newNode.nodes, hamtEntry{hash: hash, key: key, value: value})
		return newNode, true
	}

	idx := (hash >> shift) & hamtMask
	bit := uint32(1) << idx

	if n.bitmap&bit == 0 {
		newNode.bitmap |= bit
		pos := popcount(newNode.bitmap & (bit - 1))

		newNode.nodes = append(newNode.nodes, nil)
		copy(newNode.nodes[pos+1:], newNode.nodes[pos:])
		newNode.nodes[pos] = hamtEntry{hash: hash, key: key, value: value}
		return newNode, true
	}

	pos := popcount(n.bitmap & (bit - 1))
	switch v := newNode.nodes[pos].(type) {
	case hamtEntry:
		if v.hash == hash && v.key == key {
			newNode.nodes[pos] = hamtEntry{hash: hash, key: key, value: value}
			return newNode, false
		}

		// Push both entries down one level
		child := &hamtNode{}
		child, _ = child.put(v.hash, v.key, v.value, shift+hamtBits)
		child, _ = child.put(hash, key, value, shift+hamtBits)
		newNode.nodes[pos] = child
		return newNode, true

	case *hamtNode:
		newChild, added := v.put(hash, key, value, shift+hamtBits)
		newNode.nodes[pos] = newChild
		return newNode, added
	}

	return newNode, false
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// popcount counts set bits
func popcount(x uint32) int {
	x = x - ((x >> 1) & 0x55555555)
	x = (x & 0x33333333) + ((x >> 2) & 0x33333333)
	x = (x + (x >> 4)) & 0x0f0f0f0f
	x = x + (x >> 8)
	x = x + (x >> 16)
	return int(x & 0x3f)
}
