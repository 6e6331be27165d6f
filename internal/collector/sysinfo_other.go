//go:build !darwin

package collector

// Non-darwin platforms rely entirely on gopsutil for identity.

func platformOSVersion() string { return "" }

func platformCPUBrand() string { return "" }
