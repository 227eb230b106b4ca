package models

// Draft holds the in-progress post data gathered across one conversation.
// It lives only in memory; its files are deleted on cancellation and kept
// on confirmation.
type Draft struct {
	PhotoRawPath       string
	PhotoOptimizedPath string
	Heading            string
	Caption            string
}

// PhotoPath returns the path that should be published: the optimized copy
// when one exists, otherwise the raw download.
func (d *Draft) PhotoPath() string {
	if d.PhotoOptimizedPath != "" {
		return d.PhotoOptimizedPath
	}
	return d.PhotoRawPath
}
