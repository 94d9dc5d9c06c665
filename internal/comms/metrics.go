package comms

// completedPacketRecord is one entry in the metrics ring buffer.
type completedPacketRecord struct {
	TimestampS float64
	Delivered  bool
	LatencyS   float64
	SizeBytes  int
}

// Metrics holds a sliding 30s window of packet completions in a fixed-
// size circular buffer, per spec.md §4.6 "Metrics: sliding 30s window
// for delivery rate, average latency, throughput. Circular buffer of
// size 1000 for completed packets."
type Metrics struct {
	buf   [1000]completedPacketRecord
	next  int
	count int
}

const metricsWindowS = 30.0

// Record appends one completed packet outcome to the ring buffer.
func (m *Metrics) Record(simTimeS float64, p *Packet) {
	m.buf[m.next] = completedPacketRecord{
		TimestampS: simTimeS,
		Delivered:  p.Delivered,
		LatencyS:   p.AgeS,
		SizeBytes:  p.SizeBytes,
	}
	m.next = (m.next + 1) % len(m.buf)
	if m.count < len(m.buf) {
		m.count++
	}
}

// Snapshot computes delivery rate, average latency, and throughput
// (bytes/sec) over the trailing 30s window as of simTimeS.
func (m *Metrics) Snapshot(simTimeS float64) (deliveryRate, avgLatencyS, throughputBPS float64) {
	var delivered, total int
	var latencySum float64
	var bytesSum float64

	for i := 0; i < m.count; i++ {
		r := m.buf[i]
		if simTimeS-r.TimestampS > metricsWindowS {
			continue
		}
		total++
		if r.Delivered {
			delivered++
			latencySum += r.LatencyS
			bytesSum += float64(r.SizeBytes)
		}
	}
	if total > 0 {
		deliveryRate = float64(delivered) / float64(total)
	}
	if delivered > 0 {
		avgLatencyS = latencySum / float64(delivered)
	}
	throughputBPS = bytesSum / metricsWindowS
	return
}
