package system

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit so many concurrent synthesis
// connections and audio files do not hit EMFILE.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] could not raise file limit: %v", err)
	}
}

// SynthWorkers picks the synthesis concurrency. A requested value wins;
// otherwise the count follows the logical CPUs, capped when the machine is
// short on memory since each in-flight request buffers a full audio clip.
func SynthWorkers(requested int) int {
	if requested > 0 {
		return requested
	}

	workers, err := cpu.Counts(true)
	if err != nil || workers < 1 {
		workers = runtime.NumCPU()
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		if vm.Available < 512*1024*1024 && workers > 2 {
			workers = 2
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}

// Stats is a snapshot of host load for the performance report.
type Stats struct {
	CPUs       int
	MemTotalMB uint64
	MemUsedMB  uint64
	MemUsedPct float64
}

// Snapshot collects host stats; fields stay zero when a probe fails.
func Snapshot() Stats {
	s := Stats{CPUs: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil {
		s.CPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemTotalMB = vm.Total / 1024 / 1024
		s.MemUsedMB = vm.Used / 1024 / 1024
		s.MemUsedPct = vm.UsedPercent
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("cpus=%d mem=%d/%dMB (%.1f%%)", s.CPUs, s.MemUsedMB, s.MemTotalMB, s.MemUsedPct)
}

// GetAudioDuration reads a media file's duration in seconds via ffprobe.
func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}
