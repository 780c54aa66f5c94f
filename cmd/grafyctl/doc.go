// Command grafyctl talks to a running grafy server.
//
//	grafyctl eval -e 'x*x - y*y' -x 1 -y 2
//	grafyctl exec calculus.integrate expression='x*y' 'bounds={"xMin":0,"xMax":1,"yMin":0,"yMax":1}'
//	grafyctl -json presets -tag wave
//
// The server URL defaults to $GRAFY_URL, then http://localhost:8000.
package main
