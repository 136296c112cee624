//go:build !linux

package serialport

import (
	"path/filepath"
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ListPorts returns the serial ports reported by the operating system, sorted
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	for _, d := range details {
		if d.Name != portPath {
			continue
		}
		name := filepath.Base(d.Name)
		info := &PortInfo{
			Name:        name,
			Path:        d.Name,
			Description: getPortDescription(name),
		}
		if d.IsUSB {
			info.VendorID = d.VID
			info.ProductID = d.PID
			info.SerialNumber = d.SerialNumber
			info.Product = d.Product
		}
		return info, nil
	}

	return nil, ErrDeviceNotFound
}
