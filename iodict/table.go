package iodict

// table is built once at package init and never mutated afterward, so
// lookups need no locking.
var table = map[uint16]Descriptor{
	1:  {1, "Digital Input 1", "", Boolean},
	2:  {2, "Digital Input 2", "", Boolean},
	3:  {3, "Digital Input 3", "", Boolean},
	4:  {4, "Digital Input 1 Pulse Counter", "", Raw},
	6:  {6, "Analog Input 2", "mV", Raw},
	9:  {9, "Analog Input 1", "mV", Raw},
	10: {10, "SD Status", "", Boolean},
	11: {11, "ICCID1", "", IccidHex16},
	14: {14, "ICCID2", "", IccidHex16},
	16: {16, "Total Odometer", "km", DistanceKmFromMeters},
	17: {17, "Axis X", "mG", SignedAccelMg},
	18: {18, "Axis Y", "mG", SignedAccelMg},
	19: {19, "Axis Z", "mG", SignedAccelMg},
	21: {21, "GSM Signal", "/5", GsmSignal0to5},
	24: {24, "Speed", "km/h", SpeedKmh},
	66: {66, "External Voltage", "V", VoltageMilliVoltsToVolts},
	67: {67, "Battery Voltage", "V", VoltageMilliVoltsToVolts},
	68: {68, "Battery Current", "mA", CurrentMilliamps},
	69: {69, "GNSS Status", "", GnssStatusEnum},
	71: {71, "Dallas Temperature ID", "", HexString},
	72: {72, "Dallas Temperature 1", "C", TempTenthC},
	73: {73, "Dallas Temperature 2", "C", TempTenthC},
	74: {74, "Dallas Temperature 3", "C", TempTenthC},
	78: {78, "iButton ID", "", HexString},
	80: {80, "Data Mode", "", DataModeEnum},

	85:  {85, "Fuel Level", "%", Percent},
	89:  {89, "Door Status", "", DoorBitfield},
	90:  {90, "Network Type", "", NetworkTypeEnum},
	100: {100, "Program Number", "", Raw},
	101: {101, "Module ID", "", HexString},
	102: {102, "OBD Speed", "km/h", SpeedKmh},
	103: {103, "OBD Fuel Level", "%", Percent},
	104: {104, "OBD RPM", "rpm", Rpm},
	105: {105, "OBD Coolant Temperature", "C", TempIntC},
	106: {106, "OBD Engine Load", "%", Percent},
	113: {113, "Battery Level", "%", Percent},
	115: {115, "OBD Throttle Position", "%", Percent},

	132: {132, "Security State Flags (legacy)", "", SecurityStateFlags16B},

	179: {179, "Digital Output 1", "", Boolean},
	180: {180, "Digital Output 2", "", Boolean},
	181: {181, "GNSS PDOP", "", PdopHdopHundredths},
	182: {182, "GNSS HDOP", "", PdopHdopHundredths},

	200: {200, "Sleep Mode", "", SleepModeEnum},

	236: {236, "Alarm", "", Boolean},
	239: {239, "Ignition", "", Boolean},
	240: {240, "Movement", "", Boolean},
	241: {241, "Active GSM Operator", "", Raw},

	255: {255, "Over Speeding", "", Boolean},

	281: {281, "OBD Fault Codes", "", HexString},
	282: {282, "EYE Humidity", "%", Percent},
	283: {283, "EYE Magnet Status", "", Boolean},

	327: {327, "BT Status", "", BtStatusEnum},

	380: {380, "Digital Output 3", "", Boolean},
	387: {387, "ISO6709 Coordinates", "", HexString},
	389: {389, "OBD VIN", "", HexString},

	517: {517, "Security State Flags", "", SecurityStateFlags16B},
	518: {518, "Control State Flags", "", ControlStateFlags16B},
	519: {519, "Indicator State Flags", "", IndicatorStateFlags16B},

	5:  {5, "Digital Input 2 Pulse Counter", "", Raw},
	12: {12, "Fuel Used GPS", "L", Raw},
	13: {13, "Fuel Rate GPS", "L/h", Raw},
	15: {15, "Eco Score", "", Percent},
	20: {20, "BLE Temperature #1", "C", TempTenthC},
	22: {22, "BLE Temperature #2", "C", TempTenthC},
	23: {23, "BLE Temperature #3", "C", TempTenthC},
	25: {25, "BLE Humidity #1", "%", Percent},
	26: {26, "BLE Humidity #2", "%", Percent},
	27: {27, "BLE Humidity #3", "%", Percent},
	28: {28, "BLE Humidity #4", "%", Percent},
	29: {29, "BLE Battery #1", "%", Percent},

	30: {30, "OBD DTC Count", "", Raw},
	31: {31, "OBD Engine Load", "%", Percent},
	32: {32, "OBD Coolant Temperature", "C", TempIntC},
	33: {33, "OBD Short Fuel Trim", "%", Percent},
	34: {34, "OBD Fuel Pressure", "kPa", Raw},
	35: {35, "OBD Intake MAP", "kPa", Raw},
	36: {36, "OBD Engine RPM", "rpm", Rpm},
	37: {37, "OBD Vehicle Speed", "km/h", SpeedKmh},
	38: {38, "OBD Timing Advance", "deg", Raw},
	39: {39, "OBD Intake Air Temperature", "C", TempIntC},
	40: {40, "OBD MAF Air Flow Rate", "g/s", Raw},
	41: {41, "OBD Throttle Position", "%", Percent},
	42: {42, "OBD Runtime Since Engine Start", "s", Raw},
	46: {46, "OBD Distance Traveled With MIL On", "km", DistanceMeters},
	47: {47, "OBD Fuel Rail Pressure", "kPa", Raw},
	48: {48, "OBD EGR Error", "%", Percent},
	49: {49, "OBD Barometric Pressure", "kPa", Raw},
	50: {50, "OBD Control Module Voltage", "V", VoltageMilliVoltsToVolts},
	60: {60, "OBD Fuel Type", "", Raw},

	75: {75, "Dallas Temperature 4", "C", TempTenthC},
	76: {76, "Dallas Temperature ID 2", "", HexString},
	77: {77, "Dallas Temperature ID 3", "", HexString},
	79: {79, "Dallas Temperature ID 4", "", HexString},

	81: {81, "LVCAN Vehicle Speed", "km/h", SpeedKmh},
	82: {82, "LVCAN Accelerator Pedal Position", "%", Percent},
	83: {83, "LVCAN Fuel Consumed", "L", Raw},
	84: {84, "LVCAN Fuel Level", "%", Percent},
	86: {86, "BLE Battery Voltage #1", "V", VoltageMilliVoltsToVolts},
	87: {87, "LVCAN Engine RPM", "rpm", Rpm},
	88: {88, "LVCAN Total Mileage", "km", DistanceKmFromMeters},
	91: {91, "LVCAN Engine Worktime", "min", Raw},
	92: {92, "LVCAN Engine Worktime (counted)", "min", Raw},
	93: {93, "LVCAN AdBlue Level", "%", Percent},
	94: {94, "LVCAN Engine Load", "%", Percent},
	95: {95, "LVCAN Engine Temperature", "C", TempIntC},

	107: {107, "BLE Battery Level", "%", Percent},
	109: {109, "LVCAN Axle Load", "kg", Raw},
	120: {120, "Trip Odometer", "km", DistanceKmFromMeters},

	199: {199, "Trip Distance", "km", DistanceKmFromMeters},
	201: {201, "LLS 1 Fuel Level", "", Raw},
	202: {202, "LLS 1 Temperature", "C", TempIntC},
	203: {203, "LLS 2 Fuel Level", "", Raw},
	204: {204, "LLS 2 Temperature", "C", TempIntC},
	205: {205, "GSM Cell ID", "", HexString},
	206: {206, "GSM Area Code", "", HexString},
	210: {210, "LLS 3 Fuel Level", "", Raw},
	211: {211, "LLS 3 Temperature", "C", TempIntC},
	212: {212, "LLS 4 Fuel Level", "", Raw},
	213: {213, "LLS 4 Temperature", "C", TempIntC},

	237: {237, "Network Type", "", NetworkTypeEnum},
	238: {238, "User ID", "", HexString},
	263: {263, "BT Status", "", BtStatusEnum},
	270: {270, "BLE Fuel Frequency #1", "Hz", Raw},
	271: {271, "BLE Fuel Frequency #2", "Hz", Raw},
	272: {272, "BLE Fuel Frequency #3", "Hz", Raw},
	273: {273, "BLE Fuel Frequency #4", "Hz", Raw},

	303: {303, "Instant Movement", "", Boolean},
	329: {329, "AIN Speed", "km/h", SpeedKmh},

	381: {381, "Ground Sense", "", Boolean},
	383: {383, "AXL Calibration Status", "", Raw},
	385: {385, "Beacon", "", HexString},

	403: {403, "Driver Name", "", HexString},
	404: {404, "Driver License Type", "", Raw},
	405: {405, "Driver Gender", "", Raw},
	406: {406, "Driver Card ID (supplemental)", "", HexString},
	407: {407, "Driver Card Expiry", "", Raw},
	408: {408, "Driver Card Place of Issue", "", HexString},
	409: {409, "Driver Card Status Event", "", Raw},

	451: {451, "BLE RFID #1", "", HexString},
	452: {452, "BLE RFID #2", "", HexString},
	453: {453, "BLE Button #1", "", Boolean},
	454: {454, "BLE Button #2", "", Boolean},

	500: {500, "MSP500 Vendor ID", "", Raw},
	501: {501, "MSP500 Vehicle Speed", "km/h", SpeedKmh},
	502: {502, "MSP500 Speed Source", "", Raw},

	540: {540, "OBD MIL Distance", "km", DistanceMeters},
	541: {541, "OBD Fuel Rail Pressure (direct)", "kPa", Raw},
	542: {542, "OBD EGR Error (diesel)", "%", Percent},
	543: {543, "OBD Hybrid Battery Voltage", "V", VoltageMilliVoltsToVolts},
	544: {544, "OBD Hybrid Battery Current", "mA", CurrentMilliamps},

	622: {622, "Frequency Digital Input 1", "Hz", Raw},
	623: {623, "Frequency Digital Input 2", "Hz", Raw},
	636: {636, "UMTS/LTE Cell ID", "", HexString},
	637: {637, "Wake Reason", "", WakeReasonEnum},

	759:  {759, "OBD Fault Codes Count", "", Raw},
	1148: {1148, "Connectivity Quality", "", Raw},
}
