package dictionary

// hashStr computes the original implementation's FNV-1a-like 32-bit hash
// over a string's bytes (spec §4.1 "Subword hashing").
func hashStr(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
