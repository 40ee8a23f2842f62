package lock

import "hash/fnv"

// shardIndex hashes (namespace, business_id) with FNV-1a to pick a stripe of
// the registry, the same algorithm the teacher uses for rendezvous hashing
// of lease ownership, repurposed here to pick a shard instead of a node.
func shardIndex(namespace, businessID string, shardCount int) int {
	h := fnv.New64a()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(businessID))
	return int(h.Sum64() % uint64(shardCount))
}
