// Package config loads the mediasniff CLI configuration from TOML.
//
// Resolution order for Load("") is ~/.config/mediasniff/config.toml, then
// ./mediasniff.toml in the working directory. A missing file is not an
// error; Default values are used instead.
package config
