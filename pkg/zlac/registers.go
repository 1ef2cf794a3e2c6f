package zlac

// ZLAC8015 holding registers.
const (
	regMaxSpeed    uint16 = 0x2008
	regMode        uint16 = 0x200D
	regControl     uint16 = 0x200E
	regPosition    uint16 = 0x202A // high word; low word at 0x202B
	regActualSpeed uint16 = 0x202C // 0.1 rpm
	regKp          uint16 = 0x203C
	regKi          uint16 = 0x203D
	regAccelTime   uint16 = 0x2080
	regDecelTime   uint16 = 0x2081
	regTargetSpeed uint16 = 0x2088
)

// feedbackRegisters spans position and actual speed in one read.
const feedbackRegisters = regActualSpeed - regPosition + 1

// Velocity operating mode.
const modeVelocity uint16 = 3

// Control words.
const (
	ctrlClearFault uint16 = 0x06
	ctrlDisable    uint16 = 0x07
	ctrlEnable     uint16 = 0x08
)
