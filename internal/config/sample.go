package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# PcapView configuration
version: "1.0"

# Analysis backend
server:
  base_url: "http://localhost:8000"
  endpoint: "/analyze-network"
  health_path: "/health"
  # Request timeout; 0 keeps the transport defaults
  timeout: 0s

# File validation before upload
intake:
  extension: ".pcap"
  # Maximum upload size in bytes (1 GiB)
  max_file_size: 1073741824
  # Read the pcap global header locally and show it while the upload runs
  inspect_header: false

# User-facing messages
messages:
  missing_file: "Please select a file"
  wrong_extension: "Please select a PCAP file"
  too_large: "File size exceeds 1GB limit"
  request_failed: "Error analyzing file"
  transport_failure: "Error occurred while analyzing the file"
  loading: "Loading..."
  detail_label: "Detailed report"

output:
  default_format: "text" # text|json|markdown
  color_mode: "auto"     # auto|always|never
  verbose: false
  theme: "default"       # default|high-contrast|minimal
  # The TUI owns the terminal, so its logs go here when set
  log_file: ""

# Files created in this directory are submitted automatically
drop_zone:
  dir: ""
  # A new file must be unchanged this long before it is picked up
  settle: 500ms
`
}

// MinimalSampleConfig returns a compact configuration with essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
server:
  base_url: "http://localhost:8000"
intake:
  max_file_size: 1073741824
output:
  default_format: "text"
`
}
