package panel

// Fundamental commands shared by the SSD1306 and SH1106 OLED controllers.
const (
	ssd1xxxSetMemoryMode         = 0x20
	ssd1xxxSetColumnAddr         = 0x21
	ssd1xxxSetPageAddr           = 0x22
	ssd1xxxSetStartLine          = 0x40
	ssd1xxxSetContrast           = 0x81
	ssd1xxxSetChargePump         = 0x8D
	ssd1xxxSetSegmentRemap       = 0xA1
	ssd1xxxSetDisplayAllOnResume = 0xA4
	ssd1xxxSetNormalDisplay      = 0xA6
	ssd1xxxSetInvertDisplay      = 0xA7
	ssd1xxxSetMultiplexRatio     = 0xA8
	ssd1xxxSetDisplayOff         = 0xAE
	ssd1xxxSetDisplayOn          = 0xAF
	ssd1xxxSetComScanDec         = 0xC8
	ssd1xxxSetDisplayOffset      = 0xD3
	ssd1xxxSetDisplayClockDiv    = 0xD5
	ssd1xxxSetPrecharge          = 0xD9
	ssd1xxxSetComPins            = 0xDA
	ssd1xxxSetVCOMDeselect       = 0xDB
)

// Charge pump settings.
const (
	ssd1xxxChargePumpOn  = 0x14
	ssd1xxxChargePumpOff = 0x10
)

// ssd1xxxCommands sends each command byte with WriteIndex.
func ssd1xxxCommands(bus Bus, commands ...byte) error {
	for _, command := range commands {
		if err := bus.WriteIndex(command); err != nil {
			return err
		}
	}
	return nil
}
