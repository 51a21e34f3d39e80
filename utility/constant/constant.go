package constant

// window length (most recent samples) per time range
const (
	DailyWindowSize   = 12
	WeeklyWindowSize  = 24
	MonthlyWindowSize = 48
)

const (
	UnitPower  = "kW"
	UnitEnergy = "kWh"
)

const (
	TitleDaily   = "Today's Production"
	TitleWeekly  = "This Week's Production"
	TitleMonthly = "This Year's Production"

	NoDataMessage = "No data available to display."
)

// connection badge labels
const (
	StatusDisconnected = "Disconnected"
	StatusConnected    = "Connected to ESP32"
	StatusWaiting      = "Waiting for data..."
)

// label shown for a sample without a usable timestamp
const InvalidTimeLabel = "--:--:--"

const TimeLabelLayout = "15:04:05"

// env defaults
const (
	DefaultServerURL             = "https://esp32-server-lyo0.onrender.com"
	DefaultHistoryPath           = "/api/data"
	DefaultHistoryRefreshCron    = "*/5 * * * *"
	DefaultListenAddress         = ":9000"
	DefaultConnectRetryCount     = 5
	DefaultReconnectWaitSeconds  = 5
	DefaultWaitingSeconds        = 10
	DefaultFetchTimeoutSeconds   = 30
	DefaultSerialBaudrate        = 115200
	DefaultSerialDevice          = "/dev/ttyUSB0"
	DefaultSerialDeviceForDarwin = "/dev/tty.usbserial-A103BTKQ"
)
