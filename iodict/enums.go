package iodict

import "fmt"

var gnssStatusNames = map[uint64]string{
	0: "GNSS OFF",
	1: "GNSS ON with fix",
	2: "GNSS ON without fix",
	3: "GNSS sleep",
}

var dataModeNames = map[uint64]string{
	0: "Home network, Data off",
	1: "Home network, Data on",
	2: "Roaming, Data off",
	3: "Roaming, Data on",
	4: "Unknown network, Data off",
	5: "Unknown network, Data on",
	6: "Home network, Data on (active)",
	7: "Roaming, Data on (active)",
	8: "Unknown network, Data on (active)",
}

var sleepModeNames = map[uint64]string{
	0: "No Sleep",
	1: "GPS Sleep",
	2: "Deep Sleep",
	3: "Online Sleep",
	4: "Ultra Sleep",
}

var btStatusNames = map[uint64]string{
	0: "BT not used",
	1: "BT active, not connected",
	2: "BT connected",
}

var wakeReasonNames = map[uint64]string{
	0: "Undefined",
	1: "Ignition",
	2: "Movement",
	3: "GNSS fix",
	4: "I/O element",
	5: "SMS/call wakeup",
}

var networkTypeNames = map[uint64]string{
	0: "Unknown",
	2: "2G",
	3: "3G",
	4: "LTE",
	5: "LTE-M/NB-IoT",
}

func enumName(names map[uint64]string, v uint64) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", v)
}
