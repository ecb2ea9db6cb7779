package common

import (
    "os"
    "log"
    "encoding/json"
    "path/filepath"
)

const CurrentVersion = 1

const (
    ColorAuto = "auto"
    ColorAlways = "always"
    ColorNever = "never"
)

type ConfigData struct {
    Version int `json:"version,omitempty"`
    /* where programs are loaded when -org is not given */
    Origin uint16 `json:"origin"`
    /* instruction limit for run, 0 is unlimited */
    MaxSteps uint64 `json:"max-steps"`
    Trace bool `json:"trace,omitempty"`
    Color string `json:"color,omitempty"`
    /* debugger breakpoints, keyed by the program file they were set in */
    Breakpoints map[string][]uint16 `json:"breakpoints,omitempty"`
}

/* make the directory where the config file lives, which is ~/.config/m6502 on linux */
func GetOrCreateConfigDir() (string, error) {
    configDir, err := os.UserConfigDir()
    if err != nil {
        return "", err
    }
    configPath := filepath.Join(configDir, "m6502")
    err = os.MkdirAll(configPath, 0755)
    if err != nil {
        return "", err
    }

    return configPath, nil
}

func DefaultConfigData() ConfigData {
    return ConfigData{
        Version: CurrentVersion,
        Origin: 0xc000,
        MaxSteps: 10_000_000,
        Color: ColorAuto,
    }
}

func (data *ConfigData) GetBreakpoints(program string) []uint16 {
    return data.Breakpoints[program]
}

func (data *ConfigData) SetBreakpoints(program string, breakpoints []uint16){
    if data.Breakpoints == nil {
        data.Breakpoints = make(map[string][]uint16)
    }
    if len(breakpoints) == 0 {
        delete(data.Breakpoints, program)
        return
    }
    data.Breakpoints[program] = breakpoints
}

func configFile() (string, error) {
    configPath, err := GetOrCreateConfigDir()
    if err != nil {
        return "", err
    }
    return filepath.Join(configPath, "config.json"), nil
}

func LoadConfigData() (ConfigData, error) {
    path, err := configFile()
    if err != nil {
        return DefaultConfigData(), err
    }
    return LoadConfigFrom(path)
}

/* read a config file. a missing or unreadable file gives the defaults along
 * with the error, a file from an older version gives the defaults and no error.
 */
func LoadConfigFrom(path string) (ConfigData, error) {
    file, err := os.Open(path)
    if err != nil {
        return DefaultConfigData(), err
    }
    defer file.Close()

    var data ConfigData
    decoder := json.NewDecoder(file)
    err = decoder.Decode(&data)
    if err != nil {
        log.Printf("Could not load config data: %v", err)
        return DefaultConfigData(), err
    }

    if data.Version != CurrentVersion {
        return DefaultConfigData(), nil
    }

    switch data.Color {
        case ColorAuto, ColorAlways, ColorNever:
        default:
            data.Color = ColorAuto
    }

    return data, nil
}

func SaveConfigData(data ConfigData) error {
    path, err := configFile()
    if err != nil {
        return err
    }
    return SaveConfigTo(path, data)
}

func SaveConfigTo(path string, data ConfigData) error {
    file, err := os.Create(path)
    if err != nil {
        return err
    }
    defer file.Close()

    encoder := json.NewEncoder(file)
    encoder.SetIndent("", "  ")
    return encoder.Encode(data)
}
