package metrics

import "fmt"

// Tag creates a formatted DataDog tag string in "key:value" format.
func Tag(key, value string) string {
	return fmt.Sprintf("%s:%s", key, value)
}

// NamespaceTag creates a tenant namespace tag.
func NamespaceTag(namespace string) string {
	return Tag("namespace", namespace)
}

// CommandTag creates a command tag (hset/hget/hexists/...).
func CommandTag(command string) string {
	return Tag("command", command)
}

// TierTag creates a lookup tier tag (write-buffer/local-cache/kv-store).
func TierTag(tier string) string {
	return Tag("tier", tier)
}

// CacheTag creates a cache name tag.
func CacheTag(name string) string {
	return Tag("cache", name)
}
