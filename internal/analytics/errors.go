package analytics

import "fmt"

// UnsupportedMethodError indicates an unknown correlation or statistic
// method identifier.
type UnsupportedMethodError struct {
	Method string
}

// Error implements the error interface
func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method: %s", e.Method)
}

// NoNumericColumnsError indicates that statistics were requested on a
// frame with no columns that carry any defined values.
type NoNumericColumnsError struct{}

// Error implements the error interface
func (e *NoNumericColumnsError) Error() string {
	return "no numeric columns with data"
}
