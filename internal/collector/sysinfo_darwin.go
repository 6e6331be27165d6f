//go:build darwin

package collector

import "golang.org/x/sys/unix"

// platformOSVersion reads the marketing OS version (e.g. "14.2.1") straight
// from the kernel.
func platformOSVersion() string {
	v, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return ""
	}
	return v
}

// platformCPUBrand reads the CPU brand string (e.g. "Apple M2") straight
// from the kernel.
func platformCPUBrand() string {
	v, err := unix.Sysctl("machdep.cpu.brand_string")
	if err != nil {
		return ""
	}
	return v
}
