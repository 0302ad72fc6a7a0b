// Package cover implements the adaptive cover-traffic generator (component
// I): a weighted mixture over named traffic patterns, with emergency and
// battery-saving override paths, plus a periodic anonymity-set assessment.
package cover

// Pattern names the traffic shape the generator is currently mimicking.
type Pattern int

const (
	Constant Pattern = iota
	Bursty
	WebBrowsing
	VideoStreaming
	FileTransfer
	Gaming
	IoT
	Messaging

	numPatterns
)

func (p Pattern) String() string {
	switch p {
	case Constant:
		return "constant"
	case Bursty:
		return "bursty"
	case WebBrowsing:
		return "web_browsing"
	case VideoStreaming:
		return "video_streaming"
	case FileTransfer:
		return "file_transfer"
	case Gaming:
		return "gaming"
	case IoT:
		return "iot"
	case Messaging:
		return "messaging"
	default:
		return "unknown"
	}
}

// Profile is one pattern's traffic-shape parameters.
type Profile struct {
	Pattern           Pattern
	BaseRate          float64 // packets/sec
	BurstProbability  float64 // [0,1] chance a given emission starts a burst
	BurstMultiplier   float64 // rate multiplier while bursting
	InterBurstDelayMS float64 // mean delay between bursts, in ms
	PacketSizeStdDev  float64 // stddev of packet size around the target, in bytes
}

// DefaultProfiles returns the built-in parameters for all eight named
// patterns.
func DefaultProfiles() map[Pattern]Profile {
	return map[Pattern]Profile{
		Constant:       {Pattern: Constant, BaseRate: 2.0, BurstProbability: 0.0, BurstMultiplier: 1.0, InterBurstDelayMS: 0, PacketSizeStdDev: 5},
		Bursty:         {Pattern: Bursty, BaseRate: 1.0, BurstProbability: 0.3, BurstMultiplier: 6.0, InterBurstDelayMS: 2000, PacketSizeStdDev: 120},
		WebBrowsing:    {Pattern: WebBrowsing, BaseRate: 3.0, BurstProbability: 0.2, BurstMultiplier: 4.0, InterBurstDelayMS: 5000, PacketSizeStdDev: 200},
		VideoStreaming: {Pattern: VideoStreaming, BaseRate: 25.0, BurstProbability: 0.05, BurstMultiplier: 1.5, InterBurstDelayMS: 500, PacketSizeStdDev: 80},
		FileTransfer:   {Pattern: FileTransfer, BaseRate: 40.0, BurstProbability: 0.1, BurstMultiplier: 2.0, InterBurstDelayMS: 100, PacketSizeStdDev: 30},
		Gaming:         {Pattern: Gaming, BaseRate: 20.0, BurstProbability: 0.15, BurstMultiplier: 2.5, InterBurstDelayMS: 50, PacketSizeStdDev: 60},
		IoT:            {Pattern: IoT, BaseRate: 0.2, BurstProbability: 0.05, BurstMultiplier: 3.0, InterBurstDelayMS: 30000, PacketSizeStdDev: 10},
		Messaging:      {Pattern: Messaging, BaseRate: 0.5, BurstProbability: 0.25, BurstMultiplier: 3.0, InterBurstDelayMS: 10000, PacketSizeStdDev: 40},
	}
}

// DefaultWeights returns the built-in sampling weights for the mixture
// model, favoring the more common interactive patterns.
func DefaultWeights() map[Pattern]float64 {
	return map[Pattern]float64{
		Constant:       0.5,
		Bursty:         1.0,
		WebBrowsing:    2.0,
		VideoStreaming: 1.0,
		FileTransfer:   0.5,
		Gaming:         0.5,
		IoT:            0.2,
		Messaging:      1.5,
	}
}
